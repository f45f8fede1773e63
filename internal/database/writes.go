package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bedreport/internal/models"
)

// CreatePremises inserts a premises, generating an id when empty.
func (db *DB) CreatePremises(ctx context.Context, p *models.Premises) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := db.builder.
		Insert("premises").
		Columns("id", "name", "town", "postcode").
		Values(p.ID.String(), p.Name, p.Town, p.Postcode).
		RunWith(db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert premises: %w", err)
	}
	return nil
}

// CreateRoom inserts a room.
func (db *DB) CreateRoom(ctx context.Context, r *models.Room) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := db.builder.
		Insert("rooms").
		Columns("id", "premises_id", "name").
		Values(r.ID.String(), r.PremisesID.String(), r.Name).
		RunWith(db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// CreateBedspace inserts a bedspace after validating its lifetime.
func (db *DB) CreateBedspace(ctx context.Context, b *models.Bedspace) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if err := b.Validate(); err != nil {
		return err
	}
	var onlineTo any
	if b.OnlineTo != nil {
		onlineTo = models.FormatDate(*b.OnlineTo)
	}
	_, err := db.builder.
		Insert("bedspaces").
		Columns("id", "room_id", "reference", "online_from", "online_to").
		Values(b.ID.String(), b.RoomID.String(), b.Reference, models.FormatDate(b.OnlineFrom), onlineTo).
		RunWith(db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert bedspace: %w", err)
	}
	return nil
}

// CreateBooking inserts a booking after validating it.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if err := b.Validate(); err != nil {
		return err
	}
	var turnaround any
	if b.TurnaroundWorkingDays != nil {
		turnaround = *b.TurnaroundWorkingDays
	}
	_, err := db.builder.
		Insert("bookings").
		Columns("id", "bedspace_id", "crn", "arrival_date", "departure_date", "status",
			"turnaround_working_days", "cancellation_reason").
		Values(b.ID.String(), b.BedspaceID.String(), b.CRN,
			models.FormatDate(b.ArrivalDate), models.FormatDate(b.DepartureDate), string(b.State),
			turnaround, b.CancellationReason).
		RunWith(db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// UpdateBookingState moves a booking to a new state.
func (db *DB) UpdateBookingState(ctx context.Context, id uuid.UUID, state models.BookingState, reason string) error {
	if !state.Valid() {
		return fmt.Errorf("%w: unknown booking state %q", models.ErrInvalidInput, state)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancellation_reason = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(state), reason, id.String())
	if err != nil {
		return fmt.Errorf("update booking state: %w", err)
	}
	return expectOne(res.RowsAffected())
}

// CreateVoid inserts a void period after validating it.
func (db *DB) CreateVoid(ctx context.Context, v *models.VoidPeriod) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	_, err := db.builder.
		Insert("voids").
		Columns("id", "bedspace_id", "start_date", "end_date", "reason", "cancelled", "cancellation_notes").
		Values(v.ID.String(), v.BedspaceID.String(), models.FormatDate(v.StartDate), models.FormatDate(v.EndDate),
			v.Reason, v.Cancelled, v.CancellationNotes).
		RunWith(db.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("insert void: %w", err)
	}
	return nil
}

// CancelVoid marks a void as cancelled. Cancellation is terminal.
func (db *DB) CancelVoid(ctx context.Context, id uuid.UUID, notes string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE voids SET cancelled = 1, cancellation_notes = ? WHERE id = ?`,
		notes, id.String())
	if err != nil {
		return fmt.Errorf("cancel void: %w", err)
	}
	return expectOne(res.RowsAffected())
}

func expectOne(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
