// Package week implements the week numbering used to group essay submissions
// for quota counting. The formula is intentionally not ISO-8601: week 1 always
// starts on January 1st and buckets never bridge a year boundary, so the last
// week of December and the first week of January are always distinct buckets.
// Quota history depends on these exact boundaries; do not swap in ISOWeek.
package week

import (
	"time"
)

// Bucket returns the (week number, year) pair for t.
//
// week = ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7), with Sunday = 0.
func Bucket(t time.Time) (weekNumber, year int) {
	year = t.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.YearDay() - 1
	weekNumber = (days + int(jan1.Weekday()) + 1 + 6) / 7
	return weekNumber, year
}
