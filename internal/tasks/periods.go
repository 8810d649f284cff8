package tasks

import (
	"fmt"
	"time"
)

// WindowKind names a report period with its own due-date rule.
type WindowKind int

const (
	Daily WindowKind = iota
	Weekly
	Monthly
	Yearly
)

func (k WindowKind) String() string {
	switch k {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

// Window is a report period with half-open boundaries [Start, End), both at
// local midnight.
type Window struct {
	Kind  WindowKind
	Start time.Time
	End   time.Time
}

var frenchDays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

// Title returns the window's human-readable French title.
func (w Window) Title() string {
	switch w.Kind {
	case Weekly:
		sunday := w.End.AddDate(0, 0, -1)
		return fmt.Sprintf("Rapport de la semaine du %s au %s", frenchDate(w.Start), frenchDate(sunday))
	case Monthly:
		return fmt.Sprintf("Rapport du mois de %s %d", frenchMonths[w.Start.Month()-1], w.Start.Year())
	case Yearly:
		return fmt.Sprintf("Rapport de l'année %d", w.Start.Year())
	default:
		return fmt.Sprintf("Rapport du %s", frenchDate(w.Start))
	}
}

// frenchDate renders "lundi 01/01/2024".
func frenchDate(t time.Time) string {
	return fmt.Sprintf("%s %02d/%02d/%04d", frenchDays[t.Weekday()], t.Day(), int(t.Month()), t.Year())
}

// DueWindows returns the report windows due at the given instant: daily is
// always due, weekly on Mondays, monthly on the 1st of the month, yearly on
// January 1st. Boundaries are exact local midnights.
func DueWindows(now time.Time) []Window {
	windows := []Window{dailyWindow(now)}

	if now.Weekday() == time.Monday {
		windows = append(windows, weeklyWindow(now))
	}

	if now.Day() == 1 {
		windows = append(windows, monthlyWindow(now))
	}

	if now.Month() == time.January && now.Day() == 1 {
		windows = append(windows, yearlyWindow(now))
	}

	return windows
}

// AllWindows returns all four windows relative to now, regardless of due
// rules. Used by the on-demand report command.
func AllWindows(now time.Time) []Window {
	return []Window{dailyWindow(now), weeklyWindow(now), monthlyWindow(now), yearlyWindow(now)}
}

// midnight truncates to local midnight of the same day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dailyWindow covers yesterday: [yesterday 00:00, today 00:00).
func dailyWindow(now time.Time) Window {
	today := midnight(now)
	return Window{Kind: Daily, Start: today.AddDate(0, 0, -1), End: today}
}

// weeklyWindow covers the just-completed Monday–Sunday week ending at the
// most recent Monday (today, if now is a Monday).
func weeklyWindow(now time.Time) Window {
	end := midnight(now)
	for end.Weekday() != time.Monday {
		end = end.AddDate(0, 0, -1)
	}

	return Window{Kind: Weekly, Start: end.AddDate(0, 0, -7), End: end}
}

// monthlyWindow covers the previous calendar month.
func monthlyWindow(now time.Time) Window {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{Kind: Monthly, Start: first.AddDate(0, -1, 0), End: first}
}

// yearlyWindow covers the previous calendar year.
func yearlyWindow(now time.Time) Window {
	first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Window{Kind: Yearly, Start: first.AddDate(-1, 0, 0), End: first}
}
