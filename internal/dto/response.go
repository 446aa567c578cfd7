package dto

import (
	"time"

	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── paging ──

// PaginationRequest common paging query parameters.
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage returns the page, defaulting to 1.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize returns the page size, defaulting to 20.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// ── timetables ──

// TimetableResponse is a timetable plus what a client needs to render
// its actions.
type TimetableResponse struct {
	*timetable.Timetable
	DisplayName        string            `json:"display_name"`
	Editable           bool              `json:"editable"`
	AllowedTransitions []timetable.State `json:"allowed_transitions"`
}

// NewTimetableResponse wraps t.
func NewTimetableResponse(t *timetable.Timetable) TimetableResponse {
	allowed := t.AllowedTransitions()
	if allowed == nil {
		allowed = []timetable.State{}
	}
	return TimetableResponse{
		Timetable:          t,
		DisplayName:        t.DisplayName(),
		Editable:           t.CanEdit(),
		AllowedTransitions: allowed,
	}
}

// PaginationResponse paging block of list responses.
type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// TimetableListResponse body of GET /timetables.
type TimetableListResponse struct {
	List       []TimetableResponse `json:"list"`
	Pagination PaginationResponse  `json:"pagination"`
}

// DayResponse one day column of the week view.
type DayResponse struct {
	Day   int              `json:"day_of_week"`
	Name  string           `json:"name"`
	Slots []timetable.Slot `json:"slots"`
}

// WeekResponse body of GET /timetables/:id/week.
type WeekResponse struct {
	TimetableID timetable.TimetableID `json:"timetable_id"`
	Days        []DayResponse         `json:"days"`
	Unplaced    []timetable.Slot      `json:"unplaced,omitempty"` // slots with a day outside 0-6
	Summary     timetable.Summary     `json:"summary"`
}

// NewWeekResponse groups t's slots by day, all seven days present.
func NewWeekResponse(t *timetable.Timetable) WeekResponse {
	week, unplaced := timetable.PartitionByDay(t.Slots)
	days := make([]DayResponse, 0, len(week))
	for d, slots := range week {
		if slots == nil {
			slots = []timetable.Slot{}
		}
		days = append(days, DayResponse{Day: d, Name: timetable.DayName(d), Slots: slots})
	}
	return WeekResponse{
		TimetableID: t.ID,
		Days:        days,
		Unplaced:    unplaced,
		Summary:     timetable.Summarize(t.Slots),
	}
}

// ConflictsResponse body of GET /timetables/:id/conflicts.
type ConflictsResponse struct {
	Count     int                  `json:"count"`
	Conflicts []timetable.Conflict `json:"conflicts"`
}

// OccurrencesResponse body of GET /timetables/:id/occurrences.
type OccurrencesResponse struct {
	Timezone    string                 `json:"timezone"`
	Count       int                    `json:"count"`
	Occurrences []timetable.Occurrence `json:"occurrences"`
}

// ── editing sessions ──

// SessionResponse describes an editing session and its working copy.
type SessionResponse struct {
	SessionID  string            `json:"session_id"`
	Timetable  TimetableResponse `json:"timetable"`
	Dirty      bool              `json:"dirty"`
	Committing bool              `json:"committing"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// SlotAddedResponse body of POST /editing-sessions/:sid/slots.
type SlotAddedResponse struct {
	SlotID  timetable.SlotID `json:"slot_id"`
	Session SessionResponse  `json:"session"`
}
