package report

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Period selects the aggregation granularity for the history view.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
	All
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	case All:
		return "all"
	default:
		return "periodic"
	}
}

// ParsePeriod parses a period selector from its query-string form.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	case "all", "":
		return All, nil
	default:
		return All, fmt.Errorf("unknown period %q", s)
	}
}

// Window is the inclusive time range a period selector filters on.
type Window struct {
	Start time.Time
	End   time.Time
}

// Window derives the inclusive range containing now, in now's location.
// Weeks start on Monday regardless of locale; this is a deliberate
// non-default choice. Quarters are the usual 3-month blocks (month div 3).
// Daily, Monthly and Yearly windows end at now itself; Weekly and Quarterly
// extend to the end of their last day. ok is false for All, which does not
// filter.
func (p Period) Window(now time.Time) (w Window, ok bool) {
	loc := now.Location()
	y, m, d := now.Date()

	switch p {
	case Daily:
		return Window{Start: time.Date(y, m, d, 0, 0, 0, 0, loc), End: now}, true
	case Weekly:
		offset := int(now.Weekday() - time.Monday)
		if offset < 0 {
			offset += 7
		}
		monday := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		sunday := monday.AddDate(0, 0, 6)
		return Window{Start: monday, End: endOfDay(sunday)}, true
	case Monthly:
		return Window{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: now}, true
	case Quarterly:
		quarter := (int(m) - 1) / 3
		startMonth := time.Month(quarter*3 + 1)
		start := time.Date(y, startMonth, 1, 0, 0, 0, 0, loc)
		// day 0 of the month after the quarter is the quarter's last day
		last := time.Date(y, startMonth+3, 0, 0, 0, 0, 0, loc)
		return Window{Start: start, End: endOfDay(last)}, true
	case Yearly:
		return Window{Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc), End: now}, true
	default:
		return Window{}, false
	}
}

// Contains reports whether the calendar date d falls inside the window,
// boundary-inclusive at both ends. Dates compare as whole days.
func (w Window) Contains(d civil.Date) bool {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, w.Start.Location())
	return !t.Before(w.Start) && !t.After(w.End)
}

// Title is the human-readable name of the active period, used in the UI and
// in the summary CSV header.
func (p Period) Title(now time.Time) string {
	switch p {
	case Daily:
		return now.Format("Jan 2, 2006")
	case Weekly:
		w, _ := p.Window(now)
		return fmt.Sprintf("Week of %s – %s", w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006"))
	case Monthly:
		return now.Format("January 2006")
	case Quarterly:
		quarter := (int(now.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", quarter, now.Year())
	case Yearly:
		return fmt.Sprintf("%d", now.Year())
	default:
		return "All Time"
	}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
