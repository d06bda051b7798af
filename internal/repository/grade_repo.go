package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uwuweb/uwuweb-api/internal/models"
)

// GradeRepository defines data operations for grade items and grades.
type GradeRepository interface {
	CreateItem(ctx context.Context, item *models.GradeItem) error
	GetItem(ctx context.Context, id uint) (models.GradeItem, error)
	ListItems(ctx context.Context, classSubjectID uint) ([]models.GradeItem, error)
	DeleteItem(ctx context.Context, id uint) error
	UpsertGrade(ctx context.Context, grade *models.Grade) error
	ListGradesForEnrollment(ctx context.Context, enrollmentID uint) ([]models.Grade, error)
	ListGradesForItem(ctx context.Context, itemID uint) ([]models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) CreateItem(ctx context.Context, item *models.GradeItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gradeRepository) GetItem(ctx context.Context, id uint) (models.GradeItem, error) {
	var item models.GradeItem
	if err := r.db.WithContext(ctx).Preload("ClassSubject").First(&item, id).Error; err != nil {
		return models.GradeItem{}, err
	}

	return item, nil
}

func (r *gradeRepository) ListItems(ctx context.Context, classSubjectID uint) ([]models.GradeItem, error) {
	var items []models.GradeItem
	if err := r.db.WithContext(ctx).
		Where("class_subject_id = ?", classSubjectID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// DeleteItem removes a grade item and its grades in one transaction.
func (r *gradeRepository) DeleteItem(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("grade_item_id = ?", id).Delete(&models.Grade{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.GradeItem{}, id).Error
	})
}

// UpsertGrade writes one grade per (item, enrollment); re-entering a
// score overwrites points and comment.
func (r *gradeRepository) UpsertGrade(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "grade_item_id"}, {Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "comment"}),
	}).Create(grade).Error
}

func (r *gradeRepository) ListGradesForEnrollment(ctx context.Context, enrollmentID uint) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).
		Preload("GradeItem").
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}

func (r *gradeRepository) ListGradesForItem(ctx context.Context, itemID uint) ([]models.Grade, error) {
	var grades []models.Grade
	if err := r.db.WithContext(ctx).
		Preload("Enrollment").
		Where("grade_item_id = ?", itemID).
		Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}
