package model

// Organization is the top-level record kind.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Audit
}

func (o *Organization) GetID() string   { return o.ID }
func (o *Organization) SetID(id string) { o.ID = id }

// OrganizationPatch is the updatable subset of an Organization.
type OrganizationPatch struct {
	Name      *string `json:"name"`
	UpdatedBy *string `json:"updatedBy"`
}

func (p OrganizationPatch) Apply(o *Organization) {
	set(&o.Name, p.Name)
	set(&o.UpdatedBy, p.UpdatedBy)
}
