package timetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ════════════════════════════════════════════════════════════
// Backend → domain
// ════════════════════════════════════════════════════════════

// Record is the backend representation of a timetable. It tolerates every
// shape the ERP is known to send; Timetable() normalises it.
type Record struct {
	ID             TimetableID  `json:"id"`
	Name           flexString   `json:"name"`
	Batch          wireRef      `json:"batch"`
	BatchID        wireRef      `json:"batch_id"`
	AcademicYear   wireRef      `json:"academic_year"`
	AcademicYearID wireRef      `json:"academic_year_id"`
	Semester       wireRef      `json:"semester"`
	SemesterID     wireRef      `json:"semester_id"`
	Faculty        wireRef      `json:"faculty"`
	FacultyID      wireRef      `json:"faculty_id"`
	StartDate      flexString   `json:"start_date"`
	EndDate        flexString   `json:"end_date"`
	Description    flexString   `json:"description"`
	State          flexString   `json:"state"`
	SlotIDs        []SlotRecord `json:"slot_ids"`
	Slots          []SlotRecord `json:"slots"`
}

// SlotRecord is the backend representation of a slot.
type SlotRecord struct {
	ID          SlotID     `json:"id"`
	DayOfWeek   flexInt    `json:"day_of_week"`
	StartTime   flexClock  `json:"start_time"`
	EndTime     flexClock  `json:"end_time"`
	SessionType flexString `json:"session_type"`
	Topic       flexString `json:"topic"`
	Subject     wireRef    `json:"subject"`
	SubjectID   wireRef    `json:"subject_id"`
	Faculty     wireRef    `json:"faculty"`
	FacultyID   wireRef    `json:"faculty_id"`
	Classroom   wireRef    `json:"classroom"`
	ClassroomID wireRef    `json:"classroom_id"`
}

// FromBackend decodes one backend timetable object.
func FromBackend(data []byte) (*Timetable, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode timetable: %w", err)
	}
	return rec.Timetable(), nil
}

// Timetable converts the record into the domain shape.
func (r Record) Timetable() *Timetable {
	t := &Timetable{
		ID:           r.ID,
		Name:         string(r.Name),
		Batch:        pick(r.Batch, r.BatchID),
		AcademicYear: pick(r.AcademicYear, r.AcademicYearID),
		Semester:     pick(r.Semester, r.SemesterID),
		Faculty:      pick(r.Faculty, r.FacultyID),
		StartDate:    string(r.StartDate),
		EndDate:      string(r.EndDate),
		Description:  string(r.Description),
		State:        State(r.State),
		Slots:        []Slot{},
	}
	if t.State == "" {
		t.State = StateDraft
	}
	slots := r.SlotIDs
	if len(slots) == 0 {
		slots = r.Slots
	}
	for _, s := range slots {
		t.Slots = append(t.Slots, s.Slot())
	}
	return t
}

// Slot converts the record into the domain shape.
func (r SlotRecord) Slot() Slot {
	st := SessionType(r.SessionType)
	if st == "" {
		st = SessionLecture
	}
	return Slot{
		ID:          r.ID,
		DayOfWeek:   int(r.DayOfWeek),
		StartTime:   string(r.StartTime),
		EndTime:     string(r.EndTime),
		SessionType: st,
		Topic:       string(r.Topic),
		Subject:     pick(r.Subject, r.SubjectID),
		Faculty:     pick(r.Faculty, r.FacultyID),
		Classroom:   pick(r.Classroom, r.ClassroomID),
	}
}

// pick prefers the nested object and falls back to the flat *_id key.
func pick(nested, flat wireRef) *Ref {
	if nested.ref != nil {
		return nested.ref.clone()
	}
	return flat.ref.clone()
}

// ── flexible scalar decoders ──

// flexString decodes strings, numbers and the ERP's false-for-empty.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case isEmptyJSON(raw):
		*f = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(raw)
	}
	return nil
}

// flexInt decodes numbers and numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if isEmptyJSON(raw) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %s", raw)
	}
	*f = flexInt(n)
	return nil
}

// flexClock decodes "HH:MM", "H:MM", "HH:MM:SS" and float hours (8.5 = 08:30)
// into zero-padded "HH:MM". Unrecognised text is kept so Validate reports it.
type flexClock string

func (f *flexClock) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if isEmptyJSON(raw) {
		*f = ""
		return nil
	}
	if raw[0] != '"' {
		hours, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return fmt.Errorf("expected time, got %s", raw)
		}
		*f = flexClock(floatClock(hours))
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	*f = flexClock(normalizeClock(s))
	return nil
}

func floatClock(hours float64) string {
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func normalizeClock(s string) string {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return s
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || len(parts[1]) != 2 {
		return s
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// wireRef decodes {id,name}, {name}, [id,name], a bare id, false and null.
type wireRef struct {
	ref *Ref
}

func (w *wireRef) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if isEmptyJSON(raw) {
		w.ref = nil
		return nil
	}
	switch raw[0] {
	case '{':
		var obj struct {
			ID   flexInt    `json:"id"`
			Name flexString `json:"name"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return err
		}
		if obj.ID == 0 && obj.Name == "" {
			w.ref = nil
			return nil
		}
		w.ref = &Ref{ID: int64(obj.ID), Name: string(obj.Name)}
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return err
		}
		if len(pair) == 0 {
			w.ref = nil
			return nil
		}
		var id flexInt
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return err
		}
		ref := &Ref{ID: int64(id)}
		if len(pair) > 1 {
			var name flexString
			if err := json.Unmarshal(pair[1], &name); err != nil {
				return err
			}
			ref.Name = string(name)
		}
		w.ref = ref
	default:
		var id flexInt
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}
		if id == 0 {
			w.ref = nil
			return nil
		}
		w.ref = &Ref{ID: int64(id)}
	}
	return nil
}

func isEmptyJSON(raw []byte) bool {
	s := string(raw)
	return len(raw) == 0 || s == "null" || s == "false" || s == `""`
}

// ════════════════════════════════════════════════════════════
// Domain → backend
// ════════════════════════════════════════════════════════════

// Payload is the create/update body. Relations are flattened to ids.
type Payload struct {
	Name           string        `json:"name"`
	BatchID        *int64        `json:"batch_id"`
	AcademicYearID *int64        `json:"academic_year_id,omitempty"`
	SemesterID     *int64        `json:"semester_id,omitempty"`
	FacultyID      *int64        `json:"faculty_id,omitempty"`
	StartDate      string        `json:"start_date"`
	EndDate        string        `json:"end_date"`
	Description    string        `json:"description"`
	State          State         `json:"state,omitempty"`
	Slots          []SlotPayload `json:"slots"`
}

// SlotPayload is one slot of the create/update body. classroom_id is
// omitted, never null, when no classroom is assigned.
type SlotPayload struct {
	DayOfWeek   string      `json:"day_of_week"`
	StartTime   string      `json:"start_time"`
	EndTime     string      `json:"end_time"`
	SubjectID   *int64      `json:"subject_id"`
	FacultyID   *int64      `json:"faculty_id"`
	ClassroomID *int64      `json:"classroom_id,omitempty"`
	SessionType SessionType `json:"session_type"`
	Topic       string      `json:"topic"`
}

// ToBackendPayload flattens the timetable for create and update calls.
func (t *Timetable) ToBackendPayload() Payload {
	p := Payload{
		Name:           t.Name,
		BatchID:        refID(t.Batch),
		AcademicYearID: refID(t.AcademicYear),
		SemesterID:     refID(t.Semester),
		FacultyID:      refID(t.Faculty),
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Description:    t.Description,
		State:          t.State,
		Slots:          make([]SlotPayload, 0, len(t.Slots)),
	}
	for _, s := range t.Slots {
		p.Slots = append(p.Slots, s.ToBackendPayload())
	}
	return p
}

// ToBackendPayload flattens one slot.
func (s Slot) ToBackendPayload() SlotPayload {
	st := s.SessionType
	if st == "" {
		st = SessionLecture
	}
	return SlotPayload{
		DayOfWeek:   strconv.Itoa(s.DayOfWeek),
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		SubjectID:   refID(s.Subject),
		FacultyID:   refID(s.Faculty),
		ClassroomID: refID(s.Classroom),
		SessionType: st,
		Topic:       s.Topic,
	}
}

// refID flattens a relation; name-only refs count as unassigned.
func refID(r *Ref) *int64 {
	if !r.Assigned() {
		return nil
	}
	id := r.ID
	return &id
}
