package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Premises is a property containing rooms.
type Premises struct {
	ID       uuid.UUID
	Name     string
	Town     string
	Postcode string
}

// Room belongs to exactly one premises.
type Room struct {
	ID         uuid.UUID
	PremisesID uuid.UUID
	Name       string
}

// Bedspace is the unit of occupancy.
type Bedspace struct {
	ID         uuid.UUID
	Reference  string
	RoomID     uuid.UUID
	PremisesID uuid.UUID

	// OnlineFrom is the creation date of the bedspace.
	OnlineFrom time.Time
	// OnlineTo is nil while the bedspace is still in service.
	OnlineTo *time.Time

	// Denormalised labels for report output.
	RoomName     string
	PremisesName string
}

// Validate checks identity and lifetime ordering.
func (b *Bedspace) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: bedspace is nil", ErrInvalidInput)
	}
	if b.ID == uuid.Nil {
		return fmt.Errorf("%w: bedspace id is empty", ErrInvalidInput)
	}
	if b.OnlineFrom.IsZero() {
		return fmt.Errorf("%w: bedspace %s has no online date", ErrInvalidInput, b.ID)
	}
	if b.OnlineTo != nil && DateOf(*b.OnlineTo).Before(DateOf(b.OnlineFrom)) {
		return fmt.Errorf("%w: bedspace %s ends %s before it starts %s",
			ErrInvalidInput, b.ID, FormatDate(*b.OnlineTo), FormatDate(b.OnlineFrom))
	}
	return nil
}

// OnlineUntil returns the end date, or fallback when the bedspace has none.
func (b *Bedspace) OnlineUntil(fallback time.Time) time.Time {
	if b.OnlineTo == nil {
		return DateOf(fallback)
	}
	return DateOf(*b.OnlineTo)
}
