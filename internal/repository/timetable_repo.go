package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/5sursyncIT/edusync-sub001/internal/model"
)

// TimetableFilter narrows List. Zero values are ignored.
type TimetableFilter struct {
	Search  string
	BatchID int64
	State   string
}

// SaveRequest is one atomic write. A nil Content leaves the header and slots
// untouched; an empty State leaves the state untouched.
type SaveRequest struct {
	ID        int64
	Content   *model.Timetable
	State     string
	UpdatedBy string
}

// TimetableRepository timetable data access.
type TimetableRepository interface {
	Create(ctx context.Context, t *model.Timetable) error
	GetByID(ctx context.Context, id int64) (*model.Timetable, error)
	List(ctx context.Context, filter TimetableFilter, offset, limit int) ([]model.Timetable, int64, error)
	// Save rewrites the header, replaces every slot and moves the state in
	// one transaction. Moving to active archives every other active
	// timetable of the same batch and returns their ids.
	Save(ctx context.Context, req SaveRequest) (archived []int64, err error)
	Delete(ctx context.Context, id int64) error
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo creates a TimetableRepository.
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, t *model.Timetable) error {
	for i := range t.Slots {
		t.Slots[i].Position = i
	}
	// slots are inserted with the header through the association
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id int64) (*model.Timetable, error) {
	var t model.Timetable
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *timetableRepo) List(ctx context.Context, filter TimetableFilter, offset, limit int) ([]model.Timetable, int64, error) {
	var (
		rows  []model.Timetable
		total int64
	)
	query := r.db.WithContext(ctx).Model(&model.Timetable{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR batch_name ILIKE ? OR faculty_name ILIKE ?", like, like, like)
	}
	if filter.BatchID != 0 {
		query = query.Where("batch_id = ?", filter.BatchID)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *timetableRepo) Save(ctx context.Context, req SaveRequest) ([]int64, error) {
	var archived []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Content != nil {
			if err := replaceContent(tx, req.ID, req.Content, req.UpdatedBy); err != nil {
				return err
			}
		}
		if req.State == "" {
			return nil
		}
		if err := setState(tx, []int64{req.ID}, req.State, req.UpdatedBy); err != nil {
			return err
		}
		if req.State != model.StateActive {
			return nil
		}

		var self model.Timetable
		if err := tx.Select("id", "batch_id").Where("id = ?", req.ID).First(&self).Error; err != nil {
			return err
		}
		err := tx.Model(&model.Timetable{}).
			Where("batch_id = ? AND state = ? AND id <> ?", self.BatchID, model.StateActive, req.ID).
			Order("id ASC").
			Pluck("id", &archived).Error
		if err != nil || len(archived) == 0 {
			return err
		}
		return setState(tx, archived, model.StateArchived, req.UpdatedBy)
	})
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func replaceContent(tx *gorm.DB, id int64, t *model.Timetable, updatedBy string) error {
	// map form so cleared relations are written as NULL
	res := tx.Model(&model.Timetable{}).Where("id = ?", id).Updates(map[string]any{
		"name":               t.Name,
		"batch_id":           t.BatchID,
		"batch_name":         t.BatchName,
		"academic_year_id":   t.AcademicYearID,
		"academic_year_name": t.AcademicYearName,
		"semester_id":        t.SemesterID,
		"semester_name":      t.SemesterName,
		"faculty_id":         t.FacultyID,
		"faculty_name":       t.FacultyName,
		"start_date":         t.StartDate,
		"end_date":           t.EndDate,
		"description":        t.Description,
		"updated_by":         updatedBy,
		"updated_at":         time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	// whole replacement, the old slots carry nothing worth auditing
	if err := tx.Where("timetable_id = ?", id).Delete(&model.TimetableSlot{}).Error; err != nil {
		return err
	}
	if len(t.Slots) == 0 {
		return nil
	}
	for i := range t.Slots {
		t.Slots[i].ID = 0
		t.Slots[i].TimetableID = id
		t.Slots[i].Position = i
	}
	return tx.Create(&t.Slots).Error
}

func setState(tx *gorm.DB, ids []int64, state, updatedBy string) error {
	res := tx.Model(&model.Timetable{}).Where("id IN ?", ids).Updates(map[string]any{
		"state":      state,
		"updated_by": updatedBy,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *timetableRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Timetable{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
