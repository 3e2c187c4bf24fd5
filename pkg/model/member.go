package model

// Member attaches a person to an organization and location. GroupID is
// optional and omitted from JSON when empty.
type Member struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	LocationID     string `json:"locationId"`
	GroupID        string `json:"groupId,omitempty"`
	Audit
}

func (m *Member) GetID() string   { return m.ID }
func (m *Member) SetID(id string) { m.ID = id }

// MemberPatch is the updatable subset of a Member.
type MemberPatch struct {
	OrganizationID *string `json:"organizationId"`
	LocationID     *string `json:"locationId"`
	GroupID        *string `json:"groupId"`
	UpdatedBy      *string `json:"updatedBy"`
}

func (p MemberPatch) Apply(m *Member) {
	set(&m.OrganizationID, p.OrganizationID)
	set(&m.LocationID, p.LocationID)
	set(&m.GroupID, p.GroupID)
	set(&m.UpdatedBy, p.UpdatedBy)
}
