package report

import (
	"fmt"

	"bedreport/internal/models"
)

const (
	SheetUtilization = "Bed utilisation"
	SheetUsage       = "Bed usage"
)

var utilizationColumns = []string{
	"Premises",
	"Room",
	"Bedspace reference",
	"Bedspace online days",
	"Booked days (active and closed)",
	"Confirmed days",
	"Scheduled turnaround days",
	"Effective turnaround days",
	"Void days",
	"Total booked days",
	"Occupancy rate",
	"Error",
}

var usageColumns = []string{
	"Premises",
	"Room",
	"Bedspace reference",
	"Event",
	"Start date",
	"End date",
	"Duration (days)",
	"Turnaround working days",
	"Booking status",
	"CRN",
	"Cancellation reason",
	"Void reason",
	"Error",
}

// GenerateFilename names the workbook for a window.
func GenerateFilename(w models.ReportingWindow) string {
	return fmt.Sprintf("%s%s_%s.xlsx", filePrefix, models.FormatDate(w.Start), models.FormatDate(w.End))
}

const filePrefix = "bedspace-report_"

// RenderWorkbook writes the utilisation and usage sheets. Either report may be nil.
func RenderWorkbook(w ExcelWriter, util *UtilizationReport, usage *UsageReport) error {
	if util != nil {
		if err := renderUtilization(w, util); err != nil {
			return fmt.Errorf("render utilisation: %w", err)
		}
	}
	if usage != nil {
		if err := renderUsage(w, usage); err != nil {
			return fmt.Errorf("render usage: %w", err)
		}
	}
	return nil
}

func renderUtilization(w ExcelWriter, rep *UtilizationReport) error {
	if err := w.AddSheet(SheetUtilization); err != nil {
		return err
	}
	if err := w.WriteHeader(utilizationColumns); err != nil {
		return err
	}

	for _, row := range rep.Rows {
		b := row.Bedspace
		out := []interface{}{b.PremisesName, b.RoomName, b.Reference}
		if row.Err != nil || row.Summary == nil {
			out = append(out, "", "", "", "", "", "", "", "", errText(row.Err))
		} else {
			sum := row.Summary
			var rate interface{} = ""
			if sum.OccupancyRate != nil {
				rate = *sum.OccupancyRate
			}
			out = append(out,
				sum.BedspaceOnlineDays,
				sum.BookedDaysActiveAndClosed,
				sum.ConfirmedDays,
				sum.ScheduledTurnaroundDays,
				sum.EffectiveTurnaroundDays,
				sum.VoidDays,
				sum.TotalBookedDays,
				rate,
				"",
			)
		}
		if err := w.WriteRow(out); err != nil {
			return err
		}
	}
	return nil
}

func renderUsage(w ExcelWriter, rep *UsageReport) error {
	if err := w.AddSheet(SheetUsage); err != nil {
		return err
	}
	if err := w.WriteHeader(usageColumns); err != nil {
		return err
	}

	for _, bs := range rep.Bedspaces {
		b := bs.Bedspace
		if bs.Err != nil {
			out := []interface{}{b.PremisesName, b.RoomName, b.Reference, "", "", "", "", "", "", "", "", "", errText(bs.Err)}
			if err := w.WriteRow(out); err != nil {
				return err
			}
			continue
		}
		for _, ev := range bs.Events {
			var workingDays interface{} = ""
			if ev.Kind == models.EventTurnaround {
				workingDays = ev.WorkingDays
			}
			out := []interface{}{
				b.PremisesName,
				b.RoomName,
				b.Reference,
				string(ev.Kind),
				models.FormatDate(ev.Start),
				models.FormatDate(ev.End),
				ev.DurationDays,
				workingDays,
				string(ev.BookingState),
				ev.CRN,
				ev.CancellationReason,
				ev.VoidReason,
				"",
			}
			if err := w.WriteRow(out); err != nil {
				return err
			}
		}
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return "not computed"
	}
	return err.Error()
}
