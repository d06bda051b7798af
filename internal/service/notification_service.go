package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

// ErrNotificationNotFound indicates the notification does not exist or
// belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService stores per-user notifications and fans decision
// events out to the Redis channel and NATS subject consumed by the
// frontend gateway.
type NotificationService interface {
	DecisionNotifier
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	users       repository.UserRepository
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
}

type decisionEvent struct {
	Notification dto.NotificationResponse `json:"notification"`
	AttendanceID uint                     `json:"attendance_id"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs the notification service. Redis and
// NATS handles are optional; persistence always happens.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) NotificationService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":notifications"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".notifications"
	}

	return &notificationService{
		repo:        repo,
		users:       users,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notification_service").Logger(),
		tracer:      otel.Tracer("github.com/uwuweb/uwuweb-api/internal/service/notification"),
	}
}

// JustificationDecided records a notification for the student who owns
// the decided record. Failures are logged, never propagated: the
// decision itself has already been committed.
func (s *notificationService) JustificationDecided(ctx context.Context, record models.AttendanceRecord, approved bool, reason string) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.justification_decided", trace.WithAttributes(
		attribute.Int("attendance.id", int(record.ID)),
		attribute.Bool("decision.approved", approved),
	))
	defer span.End()

	userID, err := s.users.UserIDForStudent(spanCtx, record.Enrollment.StudentID)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Uint("student_id", record.Enrollment.StudentID).Msg("failed to resolve student user for notification")
		return
	}

	kind := models.NotificationJustificationApproved
	message := fmt.Sprintf("Your absence justification for %s was approved.", record.Period.Date.Format("2006-01-02"))
	if !approved {
		kind = models.NotificationJustificationRejected
		message = fmt.Sprintf("Your absence justification for %s was rejected: %s", record.Period.Date.Format("2006-01-02"), reason)
	}

	message = strings.TrimSpace(s.sanitizer.Sanitize(message))

	notification := models.Notification{
		UserID:  userID,
		Type:    kind,
		Message: message,
	}

	if err := s.repo.Create(spanCtx, &notification); err != nil {
		span.RecordError(err)
		s.logger.Error().Err(err).Msg("failed to store notification")
		return
	}

	if err := s.publish(spanCtx, notification, record.ID); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish notification event")
	}
}

func (s *notificationService) publish(ctx context.Context, notification models.Notification, attendanceID uint) error {
	event := decisionEvent{
		Notification: dto.NewNotificationResponse(notification),
		AttendanceID: attendanceID,
		SentAt:       time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}
