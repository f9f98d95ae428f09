// Package model defines the wire types exchanged with the kanban API.
// The server is authoritative for every field; these types are a local
// cache of its responses.
package model

import "time"

// Role is a board member's permission level.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole validates a role string from user input.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(s), true
	default:
		return "", false
	}
}

// User identifies an account. It is derived from decoded token claims at
// login rather than fetched from the server.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// BoardMember associates a user with a board.
type BoardMember struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// Board is the top-level container of lists.
type Board struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	UserID     string        `json:"userId"`
	CreatedAt  time.Time     `json:"createdAt"`
	IsArchived bool          `json:"isArchived"`
	Background string        `json:"background"`
	IsTemplate bool          `json:"isTemplate"`
	IsFavorite bool          `json:"isFavorite"`
	Members    []BoardMember `json:"members"`
}

// BoardPatch is a partial board update. Nil fields are omitted from the
// request body so the server leaves them untouched.
type BoardPatch struct {
	Name       *string `json:"name,omitempty"`
	Background *string `json:"background,omitempty"`
	IsArchived *bool   `json:"isArchived,omitempty"`
	IsFavorite *bool   `json:"isFavorite,omitempty"`
}
