package model

// Location is a site that belongs to an organization.
type Location struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Audit
}

func (l *Location) GetID() string   { return l.ID }
func (l *Location) SetID(id string) { l.ID = id }

// LocationPatch is the updatable subset of a Location.
type LocationPatch struct {
	OrganizationID *string `json:"organizationId"`
	Name           *string `json:"name"`
	UpdatedBy      *string `json:"updatedBy"`
}

func (p LocationPatch) Apply(l *Location) {
	set(&l.OrganizationID, p.OrganizationID)
	set(&l.Name, p.Name)
	set(&l.UpdatedBy, p.UpdatedBy)
}
