package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"bedreport/internal/models"
)

// BedspaceFilter selects the bedspaces that were online during a window.
type BedspaceFilter struct {
	Window     models.ReportingWindow
	PremisesID *uuid.UUID
}

var bedspaceColumns = []string{
	"b.id", "b.reference", "b.room_id", "r.premises_id",
	"b.online_from", "b.online_to", "r.name", "p.name",
}

// ListBedspaces returns bedspaces online at some point in the filter window,
// ordered by premises, room and reference.
func (db *DB) ListBedspaces(ctx context.Context, f BedspaceFilter) ([]models.Bedspace, error) {
	q := db.builder.
		Select(bedspaceColumns...).
		From("bedspaces b").
		Join("rooms r ON r.id = b.room_id").
		Join("premises p ON p.id = r.premises_id").
		Where(sq.LtOrEq{"b.online_from": models.FormatDate(f.Window.End)}).
		Where(sq.Or{
			sq.Eq{"b.online_to": nil},
			sq.GtOrEq{"b.online_to": models.FormatDate(f.Window.Start)},
		}).
		OrderBy("p.name", "r.name", "b.reference")
	if f.PremisesID != nil {
		q = q.Where(sq.Eq{"r.premises_id": f.PremisesID.String()})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bedspaces query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bedspaces: %w", err)
	}
	defer rows.Close()

	var out []models.Bedspace
	for rows.Next() {
		var (
			b                           models.Bedspace
			id, roomID, premisesID, frm string
			to                          sql.NullString
		)
		if err := rows.Scan(&id, &b.Reference, &roomID, &premisesID, &frm, &to, &b.RoomName, &b.PremisesName); err != nil {
			return nil, fmt.Errorf("scan bedspace: %w", err)
		}
		if b.ID, err = parseID(id); err != nil {
			return nil, err
		}
		if b.RoomID, err = parseID(roomID); err != nil {
			return nil, err
		}
		if b.PremisesID, err = parseID(premisesID); err != nil {
			return nil, err
		}
		if b.OnlineFrom, err = parseDate(frm); err != nil {
			return nil, err
		}
		if to.Valid {
			end, err := parseDate(to.String)
			if err != nil {
				return nil, err
			}
			b.OnlineTo = &end
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookingsForBedspace returns bookings that overlap the window or departed up
// to lookbackDays before it. Departed bookings are also returned when their own
// turnaround could still reach the window: N working days never span more than
// 7N calendar days, and lookbackDays is the slack for holidays on top of that.
// defaultTurnaround stands in for bookings without an explicit turnaround.
func (db *DB) BookingsForBedspace(ctx context.Context, bedspaceID uuid.UUID, w models.ReportingWindow, lookbackDays, defaultTurnaround int) ([]models.Booking, error) {
	start := models.FormatDate(w.Start)
	query, args, err := db.builder.
		Select("id", "bedspace_id", "crn", "arrival_date", "departure_date", "status",
			"turnaround_working_days", "cancellation_reason").
		From("bookings").
		Where(sq.Eq{"bedspace_id": bedspaceID.String()}).
		Where(sq.LtOrEq{"arrival_date": models.FormatDate(w.End)}).
		Where(sq.Or{
			sq.GtOrEq{"departure_date": models.FormatDate(models.AddDays(w.Start, -lookbackDays))},
			sq.And{
				sq.Eq{"status": string(models.BookingDeparted)},
				sq.Expr("departure_date >= date(?, '-' || (COALESCE(turnaround_working_days, ?) * 7 + ?) || ' days')",
					start, defaultTurnaround, lookbackDays),
			},
		}).
		OrderBy("arrival_date", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bookings query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var (
			b                            models.Booking
			id, bsID, arrival, departure string
			status                       string
			turnaround                   sql.NullInt64
		)
		if err := rows.Scan(&id, &bsID, &b.CRN, &arrival, &departure, &status, &turnaround, &b.CancellationReason); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if b.ID, err = parseID(id); err != nil {
			return nil, err
		}
		if b.BedspaceID, err = parseID(bsID); err != nil {
			return nil, err
		}
		if b.ArrivalDate, err = parseDate(arrival); err != nil {
			return nil, err
		}
		if b.DepartureDate, err = parseDate(departure); err != nil {
			return nil, err
		}
		if b.State, err = models.ParseBookingState(status); err != nil {
			return nil, fmt.Errorf("%w: booking %s: %v", ErrInvalidData, id, err)
		}
		if turnaround.Valid {
			n := int(turnaround.Int64)
			b.TurnaroundWorkingDays = &n
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// VoidsForBedspace returns voids overlapping the window, cancelled ones included.
func (db *DB) VoidsForBedspace(ctx context.Context, bedspaceID uuid.UUID, w models.ReportingWindow) ([]models.VoidPeriod, error) {
	query, args, err := db.builder.
		Select("id", "bedspace_id", "start_date", "end_date", "reason", "cancelled", "cancellation_notes").
		From("voids").
		Where(sq.Eq{"bedspace_id": bedspaceID.String()}).
		Where(sq.LtOrEq{"start_date": models.FormatDate(w.End)}).
		Where(sq.GtOrEq{"end_date": models.FormatDate(w.Start)}).
		OrderBy("start_date", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build voids query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query voids: %w", err)
	}
	defer rows.Close()

	var out []models.VoidPeriod
	for rows.Next() {
		var (
			v                    models.VoidPeriod
			id, bsID, start, end string
		)
		if err := rows.Scan(&id, &bsID, &start, &end, &v.Reason, &v.Cancelled, &v.CancellationNotes); err != nil {
			return nil, fmt.Errorf("scan void: %w", err)
		}
		if v.ID, err = parseID(id); err != nil {
			return nil, err
		}
		if v.BedspaceID, err = parseID(bsID); err != nil {
			return nil, err
		}
		if v.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		if v.EndDate, err = parseDate(end); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q", ErrInvalidData, s)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidData, s)
	}
	return t, nil
}
