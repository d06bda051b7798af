package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// PeriodRepository defines data operations for class-subject periods.
type PeriodRepository interface {
	GetByID(ctx context.Context, id uint) (models.Period, error)
	ListByClassSubject(ctx context.Context, classSubjectID uint) ([]models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Delete(ctx context.Context, id uint) error
}

type periodRepository struct {
	db *gorm.DB
}

// NewPeriodRepository instantiates the repository.
func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) GetByID(ctx context.Context, id uint) (models.Period, error) {
	var period models.Period
	if err := r.db.WithContext(ctx).Preload("ClassSubject").First(&period, id).Error; err != nil {
		return models.Period{}, err
	}

	return period, nil
}

func (r *periodRepository) ListByClassSubject(ctx context.Context, classSubjectID uint) ([]models.Period, error) {
	var periods []models.Period
	if err := r.db.WithContext(ctx).
		Where("class_subject_id = ?", classSubjectID).
		Order("date DESC").
		Find(&periods).Error; err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *periodRepository) Create(ctx context.Context, period *models.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

// Delete removes the period and its attendance rows in one transaction.
// Either both deletes apply or neither does.
func (r *periodRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period_id = ?", id).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Period{}, id).Error
	})
}
