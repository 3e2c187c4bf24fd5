package model

// Audit holds the provenance fields shared by every record kind.
// CreatedOn and UpdatedOn are set by the server; CreatedBy and UpdatedBy are
// whatever the caller sent.
type Audit struct {
	CreatedBy string    `json:"createdBy"`
	CreatedOn Timestamp `json:"createdOn"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedOn Timestamp `json:"updatedOn"`
}

// ServerOwnedFields are the JSON keys a client cannot set on create.
var ServerOwnedFields = []string{"id", "createdOn", "updatedOn"}

// Stamps gives generic code access to the audit fields of a record.
func (a *Audit) Stamps() *Audit {
	return a
}

// Record is the constraint satisfied by pointers to the record types.
type Record[T any] interface {
	*T
	GetID() string
	SetID(id string)
	Stamps() *Audit
}

// Patch is a partial update for a record of type T. Apply copies only the
// fields the caller supplied.
type Patch[T any] interface {
	Apply(record *T)
}

func set[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}
