package models

import (
	"time"
)

const (
	RoleOwner  = "owner"
	RoleTenant = "tenant"
)

// User is an account stored in the users collection. Tenants live embedded
// in their property, so in practice users are owners.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Role         string    `bson:"role" json:"role"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	Name         string    `bson:"name" json:"name"`
	Password     string    `bson:"-" json:"password,omitempty"` // input only
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
