package report

import (
	"context"
	"io"

	"github.com/google/uuid"

	"bedreport/internal/database"
	"bedreport/internal/models"
)

// Store loads the records a report needs.
type Store interface {
	ListBedspaces(ctx context.Context, f database.BedspaceFilter) ([]models.Bedspace, error)
	BookingsForBedspace(ctx context.Context, bedspaceID uuid.UUID, w models.ReportingWindow, lookbackDays, defaultTurnaround int) ([]models.Booking, error)
	VoidsForBedspace(ctx context.Context, bedspaceID uuid.UUID, w models.ReportingWindow) ([]models.VoidPeriod, error)
}

// Publisher emits report lifecycle events.
type Publisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExcelWriter writes rows into a workbook.
type ExcelWriter interface {
	// AddSheet adds a new sheet and makes it current.
	AddSheet(name string) error

	// WriteHeader writes bold column headers to the current sheet.
	WriteHeader(columns []string) error

	// WriteRow writes a data row to the current sheet.
	WriteRow(row []interface{}) error

	// Save writes the workbook to w.
	Save(w io.Writer) error

	// SaveToFile writes the workbook to disk.
	SaveToFile(path string) error

	Close() error
}
