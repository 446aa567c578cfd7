package model

import "time"

// Stored values of timetables.state.
const (
	StateDraft     = "draft"
	StateActive    = "active"
	StateArchived  = "archived"
	StateCancelled = "cancelled"
)

// Timetable row of timetables. Related ERP entities are stored as id plus
// the name seen when the timetable was last saved.
type Timetable struct {
	ID               int64     `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name             string    `gorm:"type:varchar(200);not null"                json:"name"`
	BatchID          int64     `gorm:"not null;index"                            json:"batch_id"`
	BatchName        string    `gorm:"type:varchar(200);not null;default:''"     json:"batch_name"`
	AcademicYearID   *int64    `                                                 json:"academic_year_id,omitempty"`
	AcademicYearName string    `gorm:"type:varchar(200);not null;default:''"     json:"academic_year_name"`
	SemesterID       *int64    `                                                 json:"semester_id,omitempty"`
	SemesterName     string    `gorm:"type:varchar(200);not null;default:''"     json:"semester_name"`
	FacultyID        *int64    `                                                 json:"faculty_id,omitempty"`
	FacultyName      string    `gorm:"type:varchar(200);not null;default:''"     json:"faculty_name"`
	StartDate        time.Time `gorm:"type:date;not null"                        json:"start_date"`
	EndDate          time.Time `gorm:"type:date;not null"                        json:"end_date"`
	Description      string    `gorm:"type:text;not null;default:''"             json:"description"`
	State            string    `gorm:"type:varchar(20);not null;default:'draft'" json:"state"` // draft | active | archived | cancelled
	SoftDeleteModel

	Slots []TimetableSlot `gorm:"foreignKey:TimetableID" json:"slots,omitempty"`
}

func (Timetable) TableName() string { return "timetables" }

// TimetableSlot row of timetable_slots. Position keeps the order the
// slots were submitted in.
type TimetableSlot struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"                    json:"id"`
	TimetableID   int64     `gorm:"not null;index"                              json:"timetable_id"`
	DayOfWeek     int       `gorm:"type:smallint;not null"                      json:"day_of_week"` // 0=Monday
	StartTime     string    `gorm:"type:char(5);not null"                       json:"start_time"`
	EndTime       string    `gorm:"type:char(5);not null"                       json:"end_time"`
	SessionType   string    `gorm:"type:varchar(20);not null;default:'lecture'" json:"session_type"`
	Topic         string    `gorm:"type:varchar(255);not null;default:''"       json:"topic"`
	SubjectID     *int64    `                                                   json:"subject_id,omitempty"`
	SubjectName   string    `gorm:"type:varchar(200);not null;default:''"       json:"subject_name"`
	FacultyID     *int64    `                                                   json:"faculty_id,omitempty"`
	FacultyName   string    `gorm:"type:varchar(200);not null;default:''"       json:"faculty_name"`
	ClassroomID   *int64    `                                                   json:"classroom_id,omitempty"`
	ClassroomName string    `gorm:"type:varchar(200);not null;default:''"       json:"classroom_name"`
	Position      int       `gorm:"not null;default:0"                          json:"position"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
}

func (TimetableSlot) TableName() string { return "timetable_slots" }
