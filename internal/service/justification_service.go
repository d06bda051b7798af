package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/observability"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

// ErrAttendanceNotFound indicates the attendance record does not exist.
var ErrAttendanceNotFound = errors.New("attendance record not found")

// ErrNotJustifiable is returned when the record's status is present;
// only absences and lates admit a justification.
var ErrNotJustifiable = errors.New("attendance status does not admit a justification")

// ErrJustificationEmpty is returned when a submission carries neither
// text nor a file.
var ErrJustificationEmpty = errors.New("justification text or file is required")

// ErrJustificationMissing is returned when a decision is attempted on a
// record with no justification.
var ErrJustificationMissing = errors.New("no justification to decide")

// ErrRejectReasonRequired is returned when a rejection omits its reason.
var ErrRejectReasonRequired = errors.New("reject reason is required")

// ErrResubmitLocked is returned when a student resubmits after an
// approval. Rejected justifications stay open for resubmission;
// approved ones are final.
var ErrResubmitLocked = errors.New("justification has already been approved")

// ErrNoJustificationFile indicates the record has no stored document.
var ErrNoJustificationFile = errors.New("no justification file for this record")

// JustificationFileStore abstracts the on-disk document store.
type JustificationFileStore interface {
	Save(reader io.Reader) (string, error)
	Open(name string) (io.ReadCloser, string, error)
	Remove(name string) error
}

// DecisionNotifier is told about every approval decision so the owning
// student can be informed. Notification failures never fail the decision.
type DecisionNotifier interface {
	JustificationDecided(ctx context.Context, record models.AttendanceRecord, approved bool, reason string)
}

// SummaryInvalidator drops cached attendance summaries after a write.
type SummaryInvalidator interface {
	InvalidateStudent(ctx context.Context, studentID uint)
}

// JustificationFilter narrows role-scoped justification listings.
type JustificationFilter struct {
	StudentID   *uint
	PendingOnly bool
}

// JustificationService is the absence justification workflow: students
// submit, teachers of the period (or admins) decide.
type JustificationService interface {
	Submit(ctx context.Context, actor Actor, payload dto.JustificationSubmitRequest, file *multipart.FileHeader) (dto.JustificationSubmitResponse, error)
	Approve(ctx context.Context, actor Actor, attendanceID uint) error
	Reject(ctx context.Context, actor Actor, attendanceID uint, reason string) error
	List(ctx context.Context, actor Actor, filter JustificationFilter) ([]dto.JustificationResponse, error)
	Download(ctx context.Context, actor Actor, attendanceID uint) (io.ReadCloser, string, error)
}

type justificationService struct {
	attendance  repository.AttendanceRepository
	access      AccessService
	files       JustificationFileStore
	notifier    DecisionNotifier
	invalidator SummaryInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewJustificationService constructs the workflow service. Notifier and
// invalidator are optional.
func NewJustificationService(attendance repository.AttendanceRepository, access AccessService, files JustificationFileStore, notifier DecisionNotifier, invalidator SummaryInvalidator, validate *validator.Validate, logger zerolog.Logger) JustificationService {
	return &justificationService{
		attendance:  attendance,
		access:      access,
		files:       files,
		notifier:    notifier,
		invalidator: invalidator,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "justification_service").Logger(),
		tracer:      otel.Tracer("github.com/uwuweb/uwuweb-api/internal/service/justification"),
	}
}

func (s *justificationService) getRecord(ctx context.Context, id uint) (models.AttendanceRecord, error) {
	record, err := s.attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.AttendanceRecord{}, ErrAttendanceNotFound
		}
		return models.AttendanceRecord{}, err
	}
	return record, nil
}

func (s *justificationService) Submit(ctx context.Context, actor Actor, payload dto.JustificationSubmitRequest, file *multipart.FileHeader) (dto.JustificationSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JustificationSubmitResponse{}, err
	}

	record, err := s.getRecord(ctx, payload.AttendanceID)
	if err != nil {
		return dto.JustificationSubmitResponse{}, err
	}

	// Admins may enter a justification on a student's behalf; everyone
	// else must own the enrollment.
	if !actor.IsAdmin() && !s.access.CanSubmit(ctx, actor, record) {
		return dto.JustificationSubmitResponse{}, ErrNotAuthorized
	}

	if !record.Justifiable() {
		return dto.JustificationSubmitResponse{}, ErrNotJustifiable
	}

	if record.ApprovalStatus == models.ApprovalApproved {
		return dto.JustificationSubmitResponse{}, ErrResubmitLocked
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Text))

	storedFile := ""
	if file != nil {
		reader, err := file.Open()
		if err != nil {
			return dto.JustificationSubmitResponse{}, err
		}
		storedFile, err = s.files.Save(reader)
		reader.Close()
		if err != nil {
			return dto.JustificationSubmitResponse{}, err
		}
	}

	if text == "" && storedFile == "" && record.JustificationFile == "" {
		return dto.JustificationSubmitResponse{}, ErrJustificationEmpty
	}

	previousFile := record.JustificationFile
	if err := s.attendance.SetJustification(ctx, record.ID, text, storedFile); err != nil {
		if storedFile != "" {
			_ = s.files.Remove(storedFile)
		}
		return dto.JustificationSubmitResponse{}, err
	}

	if storedFile != "" && previousFile != "" && previousFile != storedFile {
		if err := s.files.Remove(previousFile); err != nil {
			s.logger.Warn().Err(err).Str("file", previousFile).Msg("failed to remove replaced justification file")
		}
	}

	s.invalidate(ctx, record)
	observability.JustificationsSubmitted().Inc()

	s.logger.Info().
		Uint("attendance_id", record.ID).
		Bool("file_uploaded", storedFile != "").
		Msg("justification submitted")

	return dto.JustificationSubmitResponse{Success: true, FileUploaded: storedFile != ""}, nil
}

// Approve marks the justification approved and clears any reject
// reason; both columns change in one update.
func (s *justificationService) Approve(ctx context.Context, actor Actor, attendanceID uint) error {
	return s.decide(ctx, actor, attendanceID, true, "")
}

// Reject marks the justification rejected with a mandatory reason.
func (s *justificationService) Reject(ctx context.Context, actor Actor, attendanceID uint, reason string) error {
	return s.decide(ctx, actor, attendanceID, false, reason)
}

func (s *justificationService) decide(ctx context.Context, actor Actor, attendanceID uint, approved bool, reason string) error {
	spanCtx, span := s.tracer.Start(ctx, "justification.decide", trace.WithAttributes(
		attribute.Int("attendance.id", int(attendanceID)),
		attribute.Bool("decision.approved", approved),
		attribute.String("actor.role", actor.Role),
	))
	defer span.End()

	record, err := s.getRecord(spanCtx, attendanceID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if !s.access.CanDecide(spanCtx, actor, record) {
		return ErrNotAuthorized
	}

	if !record.HasJustification() {
		return ErrJustificationMissing
	}

	status := models.ApprovalApproved
	cleanReason := ""
	if !approved {
		cleanReason = strings.TrimSpace(s.sanitizer.Sanitize(reason))
		if cleanReason == "" {
			return ErrRejectReasonRequired
		}
		status = models.ApprovalRejected
	}

	if err := s.attendance.SetDecision(spanCtx, record.ID, status, cleanReason); err != nil {
		span.RecordError(err)
		return err
	}

	s.invalidate(spanCtx, record)
	observability.JustificationDecisions().WithLabelValues(status).Inc()

	if s.notifier != nil {
		s.notifier.JustificationDecided(spanCtx, record, approved, cleanReason)
	}

	s.logger.Info().
		Uint("attendance_id", record.ID).
		Str("outcome", status).
		Uint("actor_user_id", actor.UserID).
		Msg("justification decided")

	return nil
}

func (s *justificationService) List(ctx context.Context, actor Actor, filter JustificationFilter) ([]dto.JustificationResponse, error) {
	query := repository.JustificationQuery{PendingOnly: filter.PendingOnly}

	switch {
	case actor.IsAdmin():
		query.StudentID = filter.StudentID
	case actor.IsTeacher():
		teacherID := actor.ScopedID
		query.TeacherID = &teacherID
		query.StudentID = filter.StudentID
	case actor.IsStudent():
		studentID := actor.ScopedID
		query.StudentID = &studentID
	case actor.IsParent():
		if filter.StudentID == nil {
			return nil, ErrNotAuthorized
		}
		if !s.access.ParentOwnsStudent(ctx, actor, *filter.StudentID) {
			return nil, ErrNotAuthorized
		}
		query.StudentID = filter.StudentID
	default:
		return nil, ErrNotAuthorized
	}

	records, err := s.attendance.ListJustifications(ctx, query)
	if err != nil {
		return nil, err
	}

	return dto.NewJustificationResponseSlice(records), nil
}

// Download brokers access to the stored supporting document. Files are
// never served from a static path, so this is the only read path.
func (s *justificationService) Download(ctx context.Context, actor Actor, attendanceID uint) (io.ReadCloser, string, error) {
	record, err := s.getRecord(ctx, attendanceID)
	if err != nil {
		return nil, "", err
	}

	if !s.access.CanView(ctx, actor, record) {
		return nil, "", ErrNotAuthorized
	}

	if record.JustificationFile == "" {
		return nil, "", ErrNoJustificationFile
	}

	return s.files.Open(record.JustificationFile)
}

func (s *justificationService) invalidate(ctx context.Context, record models.AttendanceRecord) {
	if s.invalidator != nil && record.Enrollment.StudentID != 0 {
		s.invalidator.InvalidateStudent(ctx, record.Enrollment.StudentID)
	}
}
