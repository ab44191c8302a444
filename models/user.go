package models

import "time"

// Portal roles.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// StaffRole reports whether any of the roles may operate on records they do
// not own. Manager and admin may additionally bypass capacity on commit.
func StaffRole(roles []string) bool {
	for _, r := range roles {
		if r == RoleProvider || r == RoleManager || r == RoleAdmin {
			return true
		}
	}
	return false
}

// CapacityBypassAllowed reports whether the roles permit committing past a
// tour's remaining seats. The override is always audited on the order.
func CapacityBypassAllowed(roles []string) bool {
	for _, r := range roles {
		if r == RoleManager || r == RoleAdmin {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity a session acts as.
type Actor struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"password,omitempty" bson:"password"`
	Role          []string  `json:"role" bson:"role"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
