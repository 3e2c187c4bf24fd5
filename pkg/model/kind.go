package model

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform lower -text -output kind.gen.go

// Kind identifies one of the record collections.
type Kind int

const (
	KindOrganization Kind = iota
	KindLocation
	KindGroup
	KindMember
)

// Collection returns the collection name for the kind. It is used both as
// the URL path segment and as the storage name.
func (k Kind) Collection() string {
	return k.String() + "s"
}
