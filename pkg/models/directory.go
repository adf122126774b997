package models

import (
	"time"
)

// MemberStatus represents whether a member is active in the organization
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// IsValid reports whether the value is one of the defined member statuses.
func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}

// Member is a person who can be assigned tasks or asked for approvals.
type Member struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      string       `json:"role"`
	Status    MemberStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// RolePermissions is the permission set attached to a role. The service does
// not enforce these; they describe capabilities for the UI.
type RolePermissions struct {
	Member    bool `json:"member"`
	Lead      bool `json:"lead"`
	Requester bool `json:"requester"`
	Approver  bool `json:"approver"`
	Admin     bool `json:"admin"`
}

// Role names a permission set that members reference by role name.
type Role struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Permissions RolePermissions `json:"permissions"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
