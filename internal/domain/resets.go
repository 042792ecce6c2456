package domain

import "time"

// ActiveResetTargets reports which reset cadences fall due on the
// given day: MONTHLY on the 1st of any month, QUARTERLY additionally
// on the 1st of Jan/Apr/Jul/Oct, YEARLY additionally on Jan 1. The
// scheduled resets themselves are not performed anywhere yet; this is
// only the calendar rule.
func ActiveResetTargets(now time.Time) []ResetCadence {
	if now.Day() != 1 {
		return nil
	}
	targets := []ResetCadence{ResetMonthly}
	switch now.Month() {
	case time.January, time.April, time.July, time.October:
		targets = append(targets, ResetQuarterly)
	}
	if now.Month() == time.January {
		targets = append(targets, ResetYearly)
	}
	return targets
}

// MonthRange returns the inclusive start and exclusive end of the
// calendar month containing t, in t's location. Listing defaults and
// the dashboard period both use it.
func MonthRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
