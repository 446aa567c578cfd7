package dto

import (
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── shared ──

// RefInput references an ERP entity by id. The name is optional and only
// used for display until the backend echoes it back.
type RefInput struct {
	ID   int64  `json:"id"   binding:"required,min=1"`
	Name string `json:"name" binding:"omitempty,max=200"`
}

// ToRef converts to the domain reference; nil stays nil.
func (r *RefInput) ToRef() *timetable.Ref {
	if r == nil {
		return nil
	}
	return &timetable.Ref{ID: r.ID, Name: r.Name}
}

// ── timetables ──

// ListTimetablesRequest query string of GET /timetables.
type ListTimetablesRequest struct {
	PaginationRequest
	Search  string `form:"search"   binding:"omitempty,max=100"`
	BatchID string `form:"batch_id" binding:"omitempty,numeric"`
	State   string `form:"state"    binding:"omitempty,timetable_state"`
}

// Filters returns the non-empty backend filters.
func (r *ListTimetablesRequest) Filters() map[string]string {
	f := make(map[string]string, 2)
	if r.BatchID != "" {
		f["batch_id"] = r.BatchID
	}
	if r.State != "" {
		f["state"] = r.State
	}
	return f
}

// SlotInput is one slot of a create request or an added slot.
type SlotInput struct {
	DayOfWeek   *int      `json:"day_of_week"  binding:"required,min=0,max=6"`
	StartTime   string    `json:"start_time"   binding:"required,clock"`
	EndTime     string    `json:"end_time"     binding:"required,clock"`
	SessionType string    `json:"session_type" binding:"omitempty,session_type"`
	Topic       string    `json:"topic"        binding:"omitempty,max=200"`
	Subject     *RefInput `json:"subject"`
	Faculty     *RefInput `json:"faculty"`
	Classroom   *RefInput `json:"classroom"`
}

// ToSlot converts to a domain slot without an id.
func (s *SlotInput) ToSlot() timetable.Slot {
	slot := timetable.Slot{
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		SessionType: timetable.SessionType(s.SessionType),
		Topic:       s.Topic,
		Subject:     s.Subject.ToRef(),
		Faculty:     s.Faculty.ToRef(),
		Classroom:   s.Classroom.ToRef(),
	}
	if s.DayOfWeek != nil {
		slot.DayOfWeek = *s.DayOfWeek
	}
	if slot.SessionType == "" {
		slot.SessionType = timetable.SessionLecture
	}
	return slot
}

// CreateTimetableRequest body of POST /timetables.
type CreateTimetableRequest struct {
	Name         string      `json:"name"          binding:"required,max=200"`
	Batch        *RefInput   `json:"batch"         binding:"required"`
	AcademicYear *RefInput   `json:"academic_year"`
	Semester     *RefInput   `json:"semester"`
	Faculty      *RefInput   `json:"faculty"`
	StartDate    string      `json:"start_date"    binding:"required,datetime=2006-01-02"`
	EndDate      string      `json:"end_date"      binding:"required,datetime=2006-01-02"`
	Description  string      `json:"description"   binding:"omitempty,max=2000"`
	Slots        []SlotInput `json:"slots"         binding:"omitempty,max=500,dive"`
}

// ToTimetable builds a draft with transient slot ids.
func (r *CreateTimetableRequest) ToTimetable() *timetable.Timetable {
	t := timetable.NewDraft()
	t.Name = r.Name
	t.Batch = r.Batch.ToRef()
	t.AcademicYear = r.AcademicYear.ToRef()
	t.Semester = r.Semester.ToRef()
	t.Faculty = r.Faculty.ToRef()
	t.StartDate = r.StartDate
	t.EndDate = r.EndDate
	t.Description = r.Description
	for i := range r.Slots {
		slot := r.Slots[i].ToSlot()
		slot.ID = timetable.TransientSlotID(int64(i + 1))
		t.Slots = append(t.Slots, slot)
	}
	return t
}

// TransitionRequest body of POST /timetables/:id/transitions.
type TransitionRequest struct {
	State string `json:"state" binding:"required,timetable_state"`
}

// OccurrencesRequest query string of GET /timetables/:id/occurrences and
// its .ics form.
type OccurrencesRequest struct {
	Timezone string `form:"tz" binding:"omitempty,timezone"`
}

// ── editing sessions ──

// OpenSessionRequest body of POST /editing-sessions. Without a timetable
// id the session edits a new draft.
type OpenSessionRequest struct {
	TimetableID string `json:"timetable_id" binding:"omitempty,max=64"`
}

// UpdateDetailsRequest body of PUT /editing-sessions/:sid/details.
type UpdateDetailsRequest struct {
	Name         *string   `json:"name"          binding:"omitempty,max=200"`
	Batch        *RefInput `json:"batch"`
	AcademicYear *RefInput `json:"academic_year"`
	Semester     *RefInput `json:"semester"`
	Faculty      *RefInput `json:"faculty"`
	StartDate    *string   `json:"start_date"    binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string   `json:"end_date"      binding:"omitempty,datetime=2006-01-02"`
	Description  *string   `json:"description"   binding:"omitempty,max=2000"`
}

// ToPatch converts to a domain details patch.
func (r *UpdateDetailsRequest) ToPatch() timetable.DetailsPatch {
	return timetable.DetailsPatch{
		Name:         r.Name,
		Batch:        r.Batch.ToRef(),
		AcademicYear: r.AcademicYear.ToRef(),
		Semester:     r.Semester.ToRef(),
		Faculty:      r.Faculty.ToRef(),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Description:  r.Description,
	}
}

// UpdateSlotRequest body of PUT /editing-sessions/:sid/slots/:slotId.
// Omitted fields are left as they are; clear_* unassigns a relation.
type UpdateSlotRequest struct {
	DayOfWeek      *int      `json:"day_of_week"  binding:"omitempty,min=0,max=6"`
	StartTime      *string   `json:"start_time"   binding:"omitempty,clock"`
	EndTime        *string   `json:"end_time"     binding:"omitempty,clock"`
	SessionType    *string   `json:"session_type" binding:"omitempty,session_type"`
	Topic          *string   `json:"topic"        binding:"omitempty,max=200"`
	Subject        *RefInput `json:"subject"`
	Faculty        *RefInput `json:"faculty"`
	Classroom      *RefInput `json:"classroom"`
	ClearSubject   bool      `json:"clear_subject"`
	ClearFaculty   bool      `json:"clear_faculty"`
	ClearClassroom bool      `json:"clear_classroom"`
}

// ToPatch converts to a domain slot patch.
func (r *UpdateSlotRequest) ToPatch() timetable.SlotPatch {
	p := timetable.SlotPatch{
		DayOfWeek:      r.DayOfWeek,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Topic:          r.Topic,
		Subject:        r.Subject.ToRef(),
		Faculty:        r.Faculty.ToRef(),
		Classroom:      r.Classroom.ToRef(),
		ClearSubject:   r.ClearSubject,
		ClearFaculty:   r.ClearFaculty,
		ClearClassroom: r.ClearClassroom,
	}
	if r.SessionType != nil {
		st := timetable.SessionType(*r.SessionType)
		p.SessionType = &st
	}
	return p
}
