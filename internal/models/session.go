package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleNone     Role = ""
)

// AdminLocalUID is the uid of the sentinel administrator. It has no backing
// record in the auth provider or the store.
const AdminLocalUID = "admin-local"

// Session is the current actor. Mutated only by the session manager.
type Session struct {
	UID   string
	Email string
	Role  Role
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == RoleAdmin }

// IsSentinel reports whether this is the local bypass administrator.
func (s *Session) IsSentinel() bool { return s != nil && s.UID == AdminLocalUID }

// RoleRecord is the per-user role document. Signup always writes role
// "customer"; admin never has a record at all.
type RoleRecord struct {
	Email     string    `bson:"email" json:"email"`
	Role      Role      `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
