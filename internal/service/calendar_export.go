package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

const calendarProductID = "-//EduSync//Timetable//EN"

// ExportCalendar renders every occurrence of the timetable as an iCalendar
// (RFC 5545) feed, one VEVENT per dated session. tz works as in
// TimetableService.Occurrences.
func (s *exportService) ExportCalendar(ctx context.Context, id timetable.TimetableID, tz string) (*bytes.Buffer, string, error) {
	loc, err := loadLocation(tz, s.defaultTZ)
	if err != nil {
		return nil, "", err
	}
	t, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(t.Slots) == 0 {
		return nil, "", ErrExportNoSlots
	}
	occ, err := t.Occurrences(loc)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetProductId(calendarProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(t.DisplayName())
	cal.SetXWRTimezone(loc.String())

	stamp := time.Now().UTC()
	for _, o := range occ {
		ev := cal.AddEvent(occurrenceUID(t.ID, o))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(o.Start)
		ev.SetEndAt(o.End)
		ev.SetSummary(refName(o.Subject, "Unassigned"))
		ev.SetDescription(occurrenceDescription(o))
		if o.Classroom != nil {
			ev.SetLocation(refName(o.Classroom, ""))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	s.logger.Debug("timetable calendar rendered",
		zap.String("id", t.ID.String()),
		zap.String("tz", loc.String()),
		zap.Int("events", len(occ)),
	)
	return buf, strings.TrimSuffix(exportFilename(t), ".xlsx") + ".ics", nil
}

// occurrenceUID is stable across renders so calendar clients update
// events in place. Slots without an id fall back to their start time.
func occurrenceUID(id timetable.TimetableID, o timetable.Occurrence) string {
	key := o.SlotID.String()
	if key == "" {
		key = o.Start.Format("1504")
	}
	return fmt.Sprintf("%s-%s-%s@edusync", id, key, o.Date)
}

func occurrenceDescription(o timetable.Occurrence) string {
	lines := []string{o.Label}
	if o.Faculty != nil {
		lines = append(lines, "Faculty: "+refName(o.Faculty, ""))
	}
	return strings.Join(lines, "\n")
}
