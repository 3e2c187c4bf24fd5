// Package audit writes RFC5424 syslog records for every mutation made
// through the API.
//
// # Event Types
//
//   - record-create
//   - record-update
//   - record-delete
//
// Each record carries structured data identifying the collection and record
// (subject@43868), the caller when authenticated (auth@43868), the client
// address (client@43868) and the outcome (action@43868).
//
// # Usage
//
//	audit.Log(audit.RecordEvent{
//	    Operation:  audit.OperationCreate,
//	    Collection: "organizations",
//	    RecordID:   created.ID,
//	    Success:    true,
//	})
package audit
