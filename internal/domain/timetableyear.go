package domain

import "time"

// TimetableYear is the planning-year window bounding which dates an
// item's calendar may legally span. Rail timetable years change on the
// December timetable change date, not on January 1st.
type TimetableYear struct {
	Label string
	Start time.Time
	End   time.Time
}

// Bounds returns the year window as a single validity segment.
func (y TimetableYear) Bounds() ValiditySegment {
	return ValiditySegment{Start: y.Start, End: y.End}
}

// Contains reports whether d falls inside the timetable year.
func (y TimetableYear) Contains(d time.Time) bool {
	return y.Bounds().ContainsDate(d)
}
