package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// ParseRole maps a user_type tag to a Role. Unknown or empty tags fall back to client.
func ParseRole(s string) Role {
	if Role(s) == RoleFreelancer {
		return RoleFreelancer
	}
	return RoleClient
}

type User struct {
	ID        uuid.UUID
	Email     string
	Username  string
	Role      Role
	CreatedAt time.Time
}
