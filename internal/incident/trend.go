package incident

import (
	"sort"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

// DefaultWindow is the observation window used when none is configured
const DefaultWindow = 30 * 24 * time.Hour

// halfStats summarises one half of the observation window
type halfStats struct {
	count    int
	severity int
}

// Trend compares the recent half of the observation window (ending at now) with the older half.
// Events with unparseable dates or older than the window are ignored; future dates count as now.
func Trend(events []model.IncidentEvent, now time.Time, window time.Duration) model.StabilityTrend {
	if len(events) == 0 {
		return model.TrendEstavel
	}
	if window <= 0 {
		window = DefaultWindow
	}

	start := now.Add(-window)
	mid := now.Add(-window / 2)

	var older, recent halfStats
	for _, ev := range events {
		t, ok := util.ParseTimestamp(ev.Date)
		if !ok {
			continue
		}
		if t.After(now) {
			t = now
		}
		if t.Before(start) {
			continue
		}

		half := &older
		if t.After(mid) {
			half = &recent
		}
		half.count++
		half.severity += ev.Severity.Weight()
	}

	up := recent.count > older.count || recent.severity > older.severity
	down := recent.count < older.count || recent.severity < older.severity

	switch {
	case up && !down:
		return model.TrendDegradando
	case down && !up:
		return model.TrendMelhorando
	default:
		return model.TrendEstavel
	}
}

// Retain keeps the n most significant events (severity, then recency, then input order)
// and returns them most recent first. Events without a parseable date sort last.
func Retain(events []model.IncidentEvent, n int) []model.IncidentEvent {
	if n <= 0 || len(events) == 0 {
		return []model.IncidentEvent{}
	}

	type dated struct {
		ev    model.IncidentEvent
		at    time.Time
		valid bool
	}

	items := make([]dated, len(events))
	for i, ev := range events {
		at, ok := util.ParseTimestamp(ev.Date)
		items[i] = dated{ev: ev, at: at, valid: ok}
	}

	newer := func(a, b dated) bool {
		if a.valid != b.valid {
			return a.valid
		}
		return a.at.After(b.at)
	}

	sort.SliceStable(items, func(i, j int) bool {
		wi, wj := items[i].ev.Severity.Weight(), items[j].ev.Severity.Weight()
		if wi != wj {
			return wi > wj
		}
		return newer(items[i], items[j])
	})
	if len(items) > n {
		items = items[:n]
	}

	sort.SliceStable(items, func(i, j int) bool { return newer(items[i], items[j]) })

	out := make([]model.IncidentEvent, len(items))
	for i, it := range items {
		out[i] = it.ev
	}
	return out
}
