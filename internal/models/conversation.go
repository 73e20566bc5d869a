package models

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
)

// Preferences is the conversation-scoped key/value bag of user-declared trip
// facts. Origin and destination feed flight-direction classification.
type Preferences map[string]any

func (p Preferences) String(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func (p Preferences) Origin() string      { return p.String("origin") }
func (p Preferences) Destination() string { return p.String("destination") }

// Conversation is the scoping unit for all itinerary state: one trip-planning
// session for one user.
type Conversation struct {
	ID             uuid.UUID          `db:"id"`
	UserID         uuid.UUID          `db:"user_id"`
	Destination    string             `db:"destination"`
	StartDate      *time.Time         `db:"start_date"`
	EndDate        *time.Time         `db:"end_date"`
	Budget         string             `db:"budget"`
	TravelersCount int                `db:"travelers_count"`
	Preferences    Preferences        `db:"preferences"`
	Status         ConversationStatus `db:"status"`
	CreatedAt      time.Time          `db:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at"`
}
