package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/observability"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

// ErrPeriodNotFound indicates the period does not exist.
var ErrPeriodNotFound = errors.New("period not found")

// ErrEnrollmentOutsideClass is returned when a recording entry names an
// enrollment the actor may not touch.
var ErrEnrollmentOutsideClass = errors.New("enrollment does not belong to an accessible class")

// AttendanceService records attendance, manages periods and computes
// per-student summaries.
type AttendanceService interface {
	Record(ctx context.Context, actor Actor, payload dto.AttendanceRecordRequest) error
	Summary(ctx context.Context, actor Actor, filter dto.AttendanceSummaryFilter) (dto.AttendanceSummaryResponse, error)
	AddPeriod(ctx context.Context, actor Actor, payload dto.PeriodCreateRequest) (dto.PeriodResponse, error)
	DeletePeriod(ctx context.Context, actor Actor, periodID uint) error
	InvalidateStudent(ctx context.Context, studentID uint)
}

type attendanceService struct {
	attendance repository.AttendanceRepository
	periods    repository.PeriodRepository
	roster     repository.RosterRepository
	access     AccessService
	cache      *redis.Client
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewAttendanceService constructs the attendance service. The cache
// client is optional.
func NewAttendanceService(attendance repository.AttendanceRepository, periods repository.PeriodRepository, roster repository.RosterRepository, access AccessService, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		attendance: attendance,
		periods:    periods,
		roster:     roster,
		access:     access,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger.With().Str("component", "attendance_service").Logger(),
	}
}

// Record upserts one attendance row per entry for the given period.
// The caller must teach the period or be an admin.
func (s *attendanceService) Record(ctx context.Context, actor Actor, payload dto.AttendanceRecordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if _, err := s.periods.GetByID(ctx, payload.PeriodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		return err
	}

	if !s.access.TeacherOwnsPeriod(ctx, actor, payload.PeriodID) {
		return ErrNotAuthorized
	}

	for _, entry := range payload.Entries {
		if !actor.IsAdmin() && !s.access.TeacherOwnsEnrollment(ctx, actor, entry.EnrollmentID) {
			return ErrEnrollmentOutsideClass
		}
	}

	touched := make(map[uint]struct{})
	for _, entry := range payload.Entries {
		if err := s.attendance.UpsertStatus(ctx, entry.EnrollmentID, payload.PeriodID, entry.Status); err != nil {
			return err
		}
		observability.AttendanceWrites().WithLabelValues(entry.Status).Inc()

		if studentID, err := s.roster.StudentIDForEnrollment(ctx, entry.EnrollmentID); err == nil {
			touched[studentID] = struct{}{}
		}
	}

	for studentID := range touched {
		s.InvalidateStudent(ctx, studentID)
	}

	s.logger.Info().
		Uint("period_id", payload.PeriodID).
		Int("entries", len(payload.Entries)).
		Msg("attendance recorded")

	return nil
}

// Summary lists one student's records and folds them into the
// aggregate. Unfiltered summaries are cached per student.
func (s *attendanceService) Summary(ctx context.Context, actor Actor, filter dto.AttendanceSummaryFilter) (dto.AttendanceSummaryResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	if !s.canViewStudent(ctx, actor, filter.StudentID) {
		return dto.AttendanceSummaryResponse{}, ErrNotAuthorized
	}

	unfiltered := filter.ClassID == nil && filter.DateFrom == nil && filter.DateTo == nil
	cacheKey := summaryCacheKey(filter.StudentID)

	if unfiltered && s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AttendanceSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", filter.StudentID).Msg("summary cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
	}

	records, err := s.attendance.List(ctx, repository.AttendanceQuery{
		StudentID: filter.StudentID,
		ClassID:   filter.ClassID,
		DateFrom:  filter.DateFrom,
		DateTo:    filter.DateTo,
	})
	if err != nil {
		return dto.AttendanceSummaryResponse{}, err
	}

	response := dto.AttendanceSummaryResponse{
		Records: dto.NewAttendanceRecordResponseSlice(records),
		Summary: Summarize(records),
	}

	if unfiltered && s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store summary cache")
			}
		}
	}

	return response, nil
}

func (s *attendanceService) canViewStudent(ctx context.Context, actor Actor, studentID uint) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsStudent():
		return actor.ScopedID == studentID
	case actor.IsParent():
		return s.access.ParentOwnsStudent(ctx, actor, studentID)
	case actor.IsTeacher():
		return s.access.TeacherTeachesStudent(ctx, actor, studentID)
	default:
		return false
	}
}

// AddPeriod creates a session for a class-subject the actor teaches.
func (s *attendanceService) AddPeriod(ctx context.Context, actor Actor, payload dto.PeriodCreateRequest) (dto.PeriodResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PeriodResponse{}, err
	}

	if !s.access.TeacherOwnsClassSubject(ctx, actor, payload.ClassSubjectID) {
		return dto.PeriodResponse{}, ErrNotAuthorized
	}

	period := models.Period{
		ClassSubjectID: payload.ClassSubjectID,
		Date:           payload.Date,
		Label:          payload.Label,
	}

	if err := s.periods.Create(ctx, &period); err != nil {
		return dto.PeriodResponse{}, err
	}

	s.logger.Info().Uint("period_id", period.ID).Msg("period created")

	return dto.NewPeriodResponse(period), nil
}

// DeletePeriod removes a period together with its attendance rows.
func (s *attendanceService) DeletePeriod(ctx context.Context, actor Actor, periodID uint) error {
	if _, err := s.periods.GetByID(ctx, periodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		return err
	}

	if !s.access.TeacherOwnsPeriod(ctx, actor, periodID) {
		return ErrNotAuthorized
	}

	if err := s.periods.Delete(ctx, periodID); err != nil {
		return err
	}

	s.logger.Info().Uint("period_id", periodID).Msg("period deleted")

	return nil
}

// InvalidateStudent drops the cached summary after any write touching
// the student's rows.
func (s *attendanceService) InvalidateStudent(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, summaryCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate summary cache")
	}
}

func summaryCacheKey(studentID uint) string {
	return fmt.Sprintf("summary:student:%d", studentID)
}

// Summarize folds one student's records into the attendance aggregate.
// It is pure: the same record set always yields the same summary, and
// an empty set yields a rate of exactly 0.
func Summarize(records []models.AttendanceRecord) dto.AttendanceSummary {
	summary := dto.AttendanceSummary{Total: len(records)}

	for _, record := range records {
		switch record.Status {
		case models.AttendancePresent:
			summary.Present++
		case models.AttendanceAbsent:
			summary.Absent++
			// Only approved absences count as justified; an approved
			// late record is still just late.
			if record.ApprovalStatus == models.ApprovalApproved {
				summary.Justified++
			}
		case models.AttendanceLate:
			summary.Late++
		}
	}

	if summary.Total == 0 {
		return summary
	}

	rate := float64(summary.Present+summary.Late) / float64(summary.Total) * 100
	summary.AttendanceRate = math.Round(rate*10) / 10

	return summary
}
