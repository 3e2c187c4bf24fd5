package model

// Group meets at a location of an organization.
type Group struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	LocationID     string `json:"locationId"`
	Name           string `json:"name"`
	Audit
}

func (g *Group) GetID() string   { return g.ID }
func (g *Group) SetID(id string) { g.ID = id }

// GroupPatch is the updatable subset of a Group.
type GroupPatch struct {
	OrganizationID *string `json:"organizationId"`
	LocationID     *string `json:"locationId"`
	Name           *string `json:"name"`
	UpdatedBy      *string `json:"updatedBy"`
}

func (p GroupPatch) Apply(g *Group) {
	set(&g.OrganizationID, p.OrganizationID)
	set(&g.LocationID, p.LocationID)
	set(&g.Name, p.Name)
	set(&g.UpdatedBy, p.UpdatedBy)
}
