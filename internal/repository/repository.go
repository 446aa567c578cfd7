package repository

import "gorm.io/gorm"

// Repository aggregates every repository.
type Repository struct {
	Timetable TimetableRepository
}

// NewRepository builds the aggregate over one connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Timetable: NewTimetableRepo(db),
	}
}
