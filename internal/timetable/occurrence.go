package timetable

import (
	"fmt"
	"time"
)

// MaxOccurrenceDays bounds how many calendar days Occurrences will expand.
const MaxOccurrenceDays = 400

// Occurrence is one dated instance of a weekly slot.
type Occurrence struct {
	Date      string    `json:"date"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	SlotID    SlotID    `json:"slot_id"`
	Label     string    `json:"label"`
	Subject   *Ref      `json:"subject,omitempty"`
	Faculty   *Ref      `json:"faculty,omitempty"`
	Classroom *Ref      `json:"classroom,omitempty"`
}

// Occurrences expands every slot onto each matching date between StartDate
// and EndDate inclusive, in chronological order. Wall-clock times are
// interpreted in loc; nil means UTC. Ranges longer than MaxOccurrenceDays
// fail with ErrSpanTooLong.
func (t *Timetable) Occurrences(loc *time.Location) ([]Occurrence, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout, t.StartDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q", ErrInvalidTimetable, t.StartDate)
	}
	end, err := time.ParseInLocation(DateLayout, t.EndDate, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date %q", ErrInvalidTimetable, t.EndDate)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrInvalidTimetable)
	}
	if days := calendarDays(start, end); days > MaxOccurrenceDays {
		return nil, fmt.Errorf("%w: %w (%d days, max %d)", ErrInvalidTimetable, ErrSpanTooLong, days, MaxOccurrenceDays)
	}

	week := t.Week()
	out := []Occurrence{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, s := range week[mondayIndex(d.Weekday())] {
			if s.Validate() != nil {
				continue
			}
			out = append(out, Occurrence{
				Date:      d.Format(DateLayout),
				Start:     atClock(d, s.StartTime),
				End:       atClock(d, s.EndTime),
				SlotID:    s.ID,
				Label:     s.Label(),
				Subject:   s.Subject.clone(),
				Faculty:   s.Faculty.clone(),
				Classroom: s.Classroom.clone(),
			})
		}
	}
	return out, nil
}

// mondayIndex maps time.Weekday (Sunday=0) onto 0=Monday ... 6=Sunday.
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// calendarDays counts the dates from start to end inclusive, ignoring DST.
func calendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

func atClock(day time.Time, clock string) time.Time {
	c, _ := time.Parse("15:04", clock)
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location())
}
