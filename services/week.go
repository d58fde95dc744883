package services

import "time"

// ShiftWindow is one of the two fixed daily shifts.
type ShiftWindow struct {
	Name      string
	StartTime string
	EndTime   string
	Minutes   int
}

var (
	WindowOpening = ShiftWindow{Name: "opening", StartTime: "09:00", EndTime: "15:00", Minutes: 360}
	WindowClosing = ShiftWindow{Name: "closing", StartTime: "15:00", EndTime: "21:00", Minutes: 360}
)

// windowForDay alternates opening/closing across the days of a planning week.
func windowForDay(dayIndex int) ShiftWindow {
	if dayIndex%2 == 0 {
		return WindowOpening
	}
	return WindowClosing
}

// NextWeekDays returns the seven calendar date strings (Monday through
// Sunday) of the week after the one containing now, in the given zone.
func NextWeekDays(now time.Time, loc *time.Location) []string {
	local := now.In(loc)

	// back up to this week's Monday, then jump one week forward
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -(weekday - 1)).
		AddDate(0, 0, 7)

	days := make([]string, 7)
	for i := 0; i < 7; i++ {
		days[i] = monday.AddDate(0, 0, i).Format(dateLayout)
	}
	return days
}

// DaysAgo returns the calendar date string the given number of days before
// now in the given zone.
func DaysAgo(now time.Time, loc *time.Location, days int) string {
	return now.In(loc).AddDate(0, 0, -days).Format(dateLayout)
}
