package audit

import "fmt"

// Operation names a mutation on a collection
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

var pastTense = map[Operation]string{
	OperationCreate: "created",
	OperationUpdate: "updated",
	OperationDelete: "deleted",
}

// RecordEvent is emitted for every create, update and delete request
type RecordEvent struct {
	Operation    Operation
	Collection   string
	RecordID     string
	UserID       string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e RecordEvent) MessageID() string {
	return "record-" + string(e.Operation)
}

func (e RecordEvent) actor() string {
	if e.UserID == "" {
		return "anonymous"
	}
	return e.UserID
}

func (e RecordEvent) target() string {
	if e.RecordID == "" {
		return e.Collection
	}
	return e.Collection + "/" + e.RecordID
}

func (e RecordEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %s %s", e.actor(), pastTense[e.Operation], e.target())
	}
	msg := fmt.Sprintf("%s tried to %s %s", e.actor(), e.Operation, e.target())
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RecordEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e RecordEvent) Facility() int {
	return FacilityUser
}

func (e RecordEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"collection": e.Collection,
		},
		SDIDAction: {
			"operation": string(e.Operation),
			"result":    "success",
		},
	}
	if e.RecordID != "" {
		sd[SDIDSubject]["id"] = e.RecordID
	}
	if e.UserID != "" {
		sd[SDIDAuth] = map[string]string{"user": e.UserID}
	}
	if e.ClientIP != "" {
		sd[SDIDClient] = map[string]string{"ip": e.ClientIP}
	}
	if !e.Success {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
