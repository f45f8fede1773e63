package occupancy

import (
	"time"

	"bedreport/internal/models"
)

// OnlineWindow is the part of a reporting window during which a bedspace existed.
type OnlineWindow struct {
	Start time.Time
	End   time.Time
	Days  int
}

// ResolveOnlineWindow intersects the bedspace lifetime with the window.
// The second result is false when the bedspace was not online at all.
func ResolveOnlineWindow(b *models.Bedspace, w models.ReportingWindow) (OnlineWindow, bool) {
	from, to, ok := ClipRange(b.OnlineFrom, b.OnlineUntil(w.End), w.Start, w.End)
	if !ok {
		return OnlineWindow{}, false
	}
	return OnlineWindow{Start: from, End: to, Days: models.DaysBetween(from, to) + 1}, true
}
