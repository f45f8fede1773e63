package occupancy

import (
	"fmt"

	"github.com/google/uuid"

	"bedreport/internal/models"
)

// validateInputs checks every record before any of them is counted or emitted.
func validateInputs(bedspace *models.Bedspace, bookings []models.Booking, voids []models.VoidPeriod, w models.ReportingWindow) error {
	if err := validateBedspace(bedspace, w); err != nil {
		return err
	}
	for i := range bookings {
		if err := validateBooking(bedspace.ID, &bookings[i]); err != nil {
			return err
		}
	}
	for i := range voids {
		if err := validateVoid(bedspace.ID, &voids[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateBedspace(b *models.Bedspace, w models.ReportingWindow) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return w.Validate()
}

func validateBooking(bedspaceID uuid.UUID, b *models.Booking) error {
	if b.BedspaceID != uuid.Nil && b.BedspaceID != bedspaceID {
		return fmt.Errorf("%w: booking %s belongs to bedspace %s, not %s",
			models.ErrInvalidInput, b.ID, b.BedspaceID, bedspaceID)
	}
	return b.Validate()
}

func validateVoid(bedspaceID uuid.UUID, v *models.VoidPeriod) error {
	if v.BedspaceID != uuid.Nil && v.BedspaceID != bedspaceID {
		return fmt.Errorf("%w: void %s belongs to bedspace %s, not %s",
			models.ErrInvalidInput, v.ID, v.BedspaceID, bedspaceID)
	}
	return v.Validate()
}
