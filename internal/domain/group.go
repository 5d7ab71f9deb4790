package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MembershipStatusActive  = "active"
	MembershipStatusPending = "pending"
)

// Group and GroupMembership are read models for the membership collaborator.
// Join/approve/leave flows live outside this engine.
type Group struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	AdminID   uuid.UUID `json:"admin_id" db:"admin_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type GroupMembership struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GroupID   uuid.UUID `json:"group_id" db:"group_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
