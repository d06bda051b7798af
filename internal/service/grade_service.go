package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

// ErrGradeItemNotFound indicates the grade item does not exist.
var ErrGradeItemNotFound = errors.New("grade item not found")

// ErrPointsExceedMax is returned when a score exceeds the item maximum.
var ErrPointsExceedMax = errors.New("points exceed the item maximum")

// GradeService manages grade items and scores for class-subjects.
type GradeService interface {
	CreateItem(ctx context.Context, actor Actor, payload dto.GradeItemCreateRequest) (dto.GradeItemResponse, error)
	ListItems(ctx context.Context, actor Actor, classSubjectID uint) ([]dto.GradeItemResponse, error)
	DeleteItem(ctx context.Context, actor Actor, itemID uint) error
	UpsertGrade(ctx context.Context, actor Actor, payload dto.GradeUpsertRequest) (dto.GradeResponse, error)
	ListGradesForEnrollment(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.GradeResponse, error)
}

type gradeService struct {
	grades    repository.GradeRepository
	roster    repository.RosterRepository
	access    AccessService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(grades repository.GradeRepository, roster repository.RosterRepository, access AccessService, validate *validator.Validate, logger zerolog.Logger) GradeService {
	return &gradeService{
		grades:    grades,
		roster:    roster,
		access:    access,
		validator: validate,
		logger:    logger.With().Str("component", "grade_service").Logger(),
	}
}

func (s *gradeService) CreateItem(ctx context.Context, actor Actor, payload dto.GradeItemCreateRequest) (dto.GradeItemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeItemResponse{}, err
	}

	if !s.access.TeacherOwnsClassSubject(ctx, actor, payload.ClassSubjectID) {
		return dto.GradeItemResponse{}, ErrNotAuthorized
	}

	item := models.GradeItem{
		ClassSubjectID: payload.ClassSubjectID,
		Name:           payload.Name,
		MaxPoints:      payload.MaxPoints,
	}

	if err := s.grades.CreateItem(ctx, &item); err != nil {
		return dto.GradeItemResponse{}, err
	}

	s.logger.Info().Uint("grade_item_id", item.ID).Msg("grade item created")

	return dto.NewGradeItemResponse(item), nil
}

func (s *gradeService) ListItems(ctx context.Context, actor Actor, classSubjectID uint) ([]dto.GradeItemResponse, error) {
	if !s.access.TeacherOwnsClassSubject(ctx, actor, classSubjectID) {
		return nil, ErrNotAuthorized
	}

	items, err := s.grades.ListItems(ctx, classSubjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GradeItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, dto.NewGradeItemResponse(item))
	}

	return responses, nil
}

func (s *gradeService) DeleteItem(ctx context.Context, actor Actor, itemID uint) error {
	item, err := s.grades.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGradeItemNotFound
		}
		return err
	}

	if !s.access.TeacherOwnsClassSubject(ctx, actor, item.ClassSubjectID) {
		return ErrNotAuthorized
	}

	if err := s.grades.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.logger.Info().Uint("grade_item_id", itemID).Msg("grade item deleted")

	return nil
}

func (s *gradeService) UpsertGrade(ctx context.Context, actor Actor, payload dto.GradeUpsertRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	item, err := s.grades.GetItem(ctx, payload.GradeItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeItemNotFound
		}
		return dto.GradeResponse{}, err
	}

	if !s.access.TeacherOwnsClassSubject(ctx, actor, item.ClassSubjectID) {
		return dto.GradeResponse{}, ErrNotAuthorized
	}

	if payload.Points > item.MaxPoints {
		return dto.GradeResponse{}, ErrPointsExceedMax
	}

	grade := models.Grade{
		GradeItemID:  payload.GradeItemID,
		EnrollmentID: payload.EnrollmentID,
		Points:       payload.Points,
		Comment:      payload.Comment,
	}

	if err := s.grades.UpsertGrade(ctx, &grade); err != nil {
		return dto.GradeResponse{}, err
	}

	grade.GradeItem = item

	s.logger.Info().
		Uint("grade_item_id", payload.GradeItemID).
		Uint("enrollment_id", payload.EnrollmentID).
		Msg("grade recorded")

	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) ListGradesForEnrollment(ctx context.Context, actor Actor, enrollmentID uint) ([]dto.GradeResponse, error) {
	allowed := false
	switch {
	case actor.IsAdmin():
		allowed = true
	case actor.IsTeacher():
		allowed = s.access.TeacherOwnsEnrollment(ctx, actor, enrollmentID)
	case actor.IsStudent():
		allowed = s.access.StudentOwnsEnrollment(ctx, actor, enrollmentID)
	case actor.IsParent():
		if studentID, err := s.roster.StudentIDForEnrollment(ctx, enrollmentID); err == nil {
			allowed = s.access.ParentOwnsStudent(ctx, actor, studentID)
		}
	}
	if !allowed {
		return nil, ErrNotAuthorized
	}

	grades, err := s.grades.ListGradesForEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewGradeResponseSlice(grades), nil
}
