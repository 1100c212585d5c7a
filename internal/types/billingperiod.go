package types

import "time"

// NextBillingDate advances start by the given number of calendar months,
// anchored on start's day of month. When the target month is shorter the day
// is clamped to its last valid day, so Jan 31 rolls to Feb 28 (or Feb 29 in a
// leap year) rather than overflowing into March. Time of day and location are
// preserved.
func NextBillingDate(start time.Time, months int) time.Time {
	year, month, day := start.Date()
	hour, minute, sec := start.Clock()

	targetMonth := time.Month(int(month) + months)
	anchor := time.Date(year, targetMonth, 1, hour, minute, sec, start.Nanosecond(), start.Location())

	if lastDay := lastDayOfMonth(anchor); day > lastDay {
		day = lastDay
	}

	return time.Date(anchor.Year(), anchor.Month(), day, hour, minute, sec, start.Nanosecond(), start.Location())
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}
