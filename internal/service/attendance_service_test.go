package service

import (
	"context"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/uwuweb/uwuweb-api/internal/dto"
	"github.com/uwuweb/uwuweb-api/internal/models"
	"github.com/uwuweb/uwuweb-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestSummarizeSpecScenario(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendancePresent, ApprovalStatus: models.ApprovalNone},
		{Status: models.AttendanceAbsent, JustificationText: "sick", ApprovalStatus: models.ApprovalApproved},
		{Status: models.AttendanceAbsent, JustificationText: "sick again", ApprovalStatus: models.ApprovalPending},
		{Status: models.AttendanceLate, ApprovalStatus: models.ApprovalNone},
	}

	summary := Summarize(records)

	require.Equal(t, 4, summary.Total)
	require.Equal(t, 1, summary.Present)
	require.Equal(t, 2, summary.Absent)
	require.Equal(t, 1, summary.Late)
	require.Equal(t, 1, summary.Justified)
	require.Equal(t, 50.0, summary.AttendanceRate)
}

func TestSummarizeEmptySet(t *testing.T) {
	summary := Summarize(nil)

	require.Equal(t, 0, summary.Total)
	require.Equal(t, float64(0), summary.AttendanceRate)
}

func TestSummarizeCountsOnlyApprovedAbsencesAsJustified(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendanceAbsent, JustificationText: "sick", ApprovalStatus: models.ApprovalApproved},
		{Status: models.AttendanceLate, JustificationText: "bus", ApprovalStatus: models.ApprovalApproved},
		{Status: models.AttendanceAbsent, JustificationText: "sick", ApprovalStatus: models.ApprovalRejected},
	}

	summary := Summarize(records)

	require.Equal(t, 1, summary.Justified, "approved lates stay out of the justified count")
	require.Equal(t, 2, summary.Absent)
	require.Equal(t, 1, summary.Late)
}

func TestSummarizeIsDeterministic(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendancePresent},
		{Status: models.AttendanceAbsent, JustificationText: "x", ApprovalStatus: models.ApprovalRejected},
		{Status: models.AttendanceLate},
	}

	first := Summarize(records)
	second := Summarize(records)

	require.Equal(t, first, second)
}

func TestSummarizeRoundsToOneDecimal(t *testing.T) {
	records := []models.AttendanceRecord{
		{Status: models.AttendancePresent},
		{Status: models.AttendancePresent},
		{Status: models.AttendanceAbsent},
	}

	summary := Summarize(records)

	// 2/3 of 100, rounded to one decimal.
	require.Equal(t, 66.7, summary.AttendanceRate)
}

type fakeAttendanceRepo struct {
	records       []models.AttendanceRecord
	byID          map[uint]models.AttendanceRecord
	listCalls     int
	decisions     []string
	justification struct {
		id   uint
		text string
		file string
	}
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id uint) (models.AttendanceRecord, error) {
	if record, ok := f.byID[id]; ok {
		return record, nil
	}
	return models.AttendanceRecord{}, gorm.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ repository.AttendanceQuery) ([]models.AttendanceRecord, error) {
	f.listCalls++
	return f.records, nil
}

func (f *fakeAttendanceRepo) ListJustifications(_ context.Context, _ repository.JustificationQuery) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

func (f *fakeAttendanceRepo) UpsertStatus(_ context.Context, _, _ uint, _ string) error {
	return nil
}

func (f *fakeAttendanceRepo) SetJustification(_ context.Context, id uint, text, file string) error {
	f.justification.id = id
	f.justification.text = text
	f.justification.file = file
	if record, ok := f.byID[id]; ok {
		record.JustificationText = text
		if file != "" {
			record.JustificationFile = file
		}
		record.ApprovalStatus = models.ApprovalPending
		record.RejectReason = ""
		f.byID[id] = record
	}
	return nil
}

func (f *fakeAttendanceRepo) SetDecision(_ context.Context, id uint, approvalStatus, rejectReason string) error {
	f.decisions = append(f.decisions, approvalStatus)
	if record, ok := f.byID[id]; ok {
		record.ApprovalStatus = approvalStatus
		record.RejectReason = rejectReason
		f.byID[id] = record
	}
	return nil
}

type fakeRoster struct {
	teacherPeriods     map[[2]uint]bool
	teacherEnrollments map[[2]uint]bool
	teacherSubjects    map[[2]uint]bool
	teacherClasses     map[[2]uint]bool
	teacherStudents    map[[2]uint]bool
	studentEnrollments map[[2]uint]bool
	parentStudents     map[[2]uint]bool
	enrollmentStudents map[uint]uint
	err                error
}

func (f *fakeRoster) TeacherOwnsClass(_ context.Context, teacherID, classID uint) (bool, error) {
	return f.teacherClasses[[2]uint{teacherID, classID}], f.err
}

func (f *fakeRoster) TeacherOwnsPeriod(_ context.Context, teacherID, periodID uint) (bool, error) {
	return f.teacherPeriods[[2]uint{teacherID, periodID}], f.err
}

func (f *fakeRoster) TeacherOwnsEnrollment(_ context.Context, teacherID, enrollmentID uint) (bool, error) {
	return f.teacherEnrollments[[2]uint{teacherID, enrollmentID}], f.err
}

func (f *fakeRoster) TeacherTeachesStudent(_ context.Context, teacherID, studentID uint) (bool, error) {
	return f.teacherStudents[[2]uint{teacherID, studentID}], f.err
}

func (f *fakeRoster) StudentOwnsEnrollment(_ context.Context, studentID, enrollmentID uint) (bool, error) {
	return f.studentEnrollments[[2]uint{studentID, enrollmentID}], f.err
}

func (f *fakeRoster) ParentOwnsStudent(_ context.Context, parentID, studentID uint) (bool, error) {
	return f.parentStudents[[2]uint{parentID, studentID}], f.err
}

func (f *fakeRoster) TeacherOwnsClassSubject(_ context.Context, teacherID, classSubjectID uint) (bool, error) {
	return f.teacherSubjects[[2]uint{teacherID, classSubjectID}], f.err
}

func (f *fakeRoster) StudentIDsForParent(_ context.Context, _ uint) ([]uint, error) {
	return nil, f.err
}

func (f *fakeRoster) StudentIDForEnrollment(_ context.Context, enrollmentID uint) (uint, error) {
	return f.enrollmentStudents[enrollmentID], f.err
}

type fakePeriodRepo struct {
	periods map[uint]models.Period
	deleted []uint
}

func (f *fakePeriodRepo) GetByID(_ context.Context, id uint) (models.Period, error) {
	if period, ok := f.periods[id]; ok {
		return period, nil
	}
	return models.Period{}, gorm.ErrRecordNotFound
}

func (f *fakePeriodRepo) ListByClassSubject(_ context.Context, _ uint) ([]models.Period, error) {
	return nil, nil
}

func (f *fakePeriodRepo) Create(_ context.Context, period *models.Period) error {
	period.ID = uint(len(f.periods) + 1)
	f.periods[period.ID] = *period
	return nil
}

func (f *fakePeriodRepo) Delete(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	delete(f.periods, id)
	return nil
}

func setupSummaryService(t *testing.T, records []models.AttendanceRecord) (AttendanceService, *fakeAttendanceRepo, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	attendance := &fakeAttendanceRepo{records: records, byID: map[uint]models.AttendanceRecord{}}
	periods := &fakePeriodRepo{periods: map[uint]models.Period{}}
	roster := &fakeRoster{}
	access := NewAccessService(roster, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAttendanceService(attendance, periods, roster, access, cache, time.Minute, validate, testLogger())
	return svc, attendance, server
}

func TestSummaryUsesCacheOnRepeat(t *testing.T) {
	records := []models.AttendanceRecord{{Status: models.AttendancePresent}}
	svc, attendance, _ := setupSummaryService(t, records)

	actor := Actor{UserID: 1, Role: models.RoleAdmin}
	filter := dto.AttendanceSummaryFilter{StudentID: 7}

	first, err := svc.Summary(context.Background(), actor, filter)
	require.NoError(t, err)
	require.Equal(t, 1, first.Summary.Total)
	require.Equal(t, 1, attendance.listCalls)

	second, err := svc.Summary(context.Background(), actor, filter)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, attendance.listCalls, "expected cache hit on repeat")
}

func TestSummaryInvalidateStudentDropsCache(t *testing.T) {
	records := []models.AttendanceRecord{{Status: models.AttendanceAbsent}}
	svc, attendance, _ := setupSummaryService(t, records)

	actor := Actor{UserID: 1, Role: models.RoleAdmin}
	filter := dto.AttendanceSummaryFilter{StudentID: 7}

	_, err := svc.Summary(context.Background(), actor, filter)
	require.NoError(t, err)

	svc.InvalidateStudent(context.Background(), 7)

	_, err = svc.Summary(context.Background(), actor, filter)
	require.NoError(t, err)
	require.Equal(t, 2, attendance.listCalls, "expected recompute after invalidation")
}

func TestSummaryFilteredBypassesCache(t *testing.T) {
	records := []models.AttendanceRecord{{Status: models.AttendanceLate}}
	svc, attendance, _ := setupSummaryService(t, records)

	actor := Actor{UserID: 1, Role: models.RoleAdmin}
	classID := uint(3)
	filter := dto.AttendanceSummaryFilter{StudentID: 7, ClassID: &classID}

	for i := 0; i < 2; i++ {
		_, err := svc.Summary(context.Background(), actor, filter)
		require.NoError(t, err)
	}

	require.Equal(t, 2, attendance.listCalls, "filtered summaries are not cached")
}

func TestSummaryDeniesForeignStudent(t *testing.T) {
	svc, _, _ := setupSummaryService(t, nil)

	actor := Actor{UserID: 2, Role: models.RoleStudent, ScopedID: 5}
	_, err := svc.Summary(context.Background(), actor, dto.AttendanceSummaryFilter{StudentID: 7})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSummaryDeniesUnrelatedTeacher(t *testing.T) {
	records := []models.AttendanceRecord{{Status: models.AttendanceAbsent, JustificationText: "sick", ApprovalStatus: models.ApprovalPending}}
	attendance := &fakeAttendanceRepo{records: records, byID: map[uint]models.AttendanceRecord{}}
	periods := &fakePeriodRepo{periods: map[uint]models.Period{}}
	roster := &fakeRoster{teacherStudents: map[[2]uint]bool{{9, 5}: true}}
	access := NewAccessService(roster, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAttendanceService(attendance, periods, roster, access, nil, time.Minute, validate, testLogger())

	// Teacher 42 has no class with student 5.
	unrelated := Actor{UserID: 3, Role: models.RoleTeacher, ScopedID: 42}
	_, err := svc.Summary(context.Background(), unrelated, dto.AttendanceSummaryFilter{StudentID: 5})
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.Zero(t, attendance.listCalls, "denied reads must never touch the store")

	owning := Actor{UserID: 4, Role: models.RoleTeacher, ScopedID: 9}
	response, err := svc.Summary(context.Background(), owning, dto.AttendanceSummaryFilter{StudentID: 5})
	require.NoError(t, err)
	require.Equal(t, 1, response.Summary.Total)
}

func TestRecordRequiresPeriodOwnership(t *testing.T) {
	svc, _, _ := setupSummaryService(t, nil)

	// Period 9 does not exist in the fake repo.
	err := svc.Record(context.Background(), Actor{Role: models.RoleAdmin}, dto.AttendanceRecordRequest{
		PeriodID: 9,
		Entries:  []dto.AttendanceEntry{{EnrollmentID: 1, Status: models.AttendanceAbsent}},
	})
	require.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestDeletePeriodDeniesForeignTeacher(t *testing.T) {
	attendance := &fakeAttendanceRepo{byID: map[uint]models.AttendanceRecord{}}
	periods := &fakePeriodRepo{periods: map[uint]models.Period{4: {ID: 4, ClassSubjectID: 2}}}
	roster := &fakeRoster{teacherPeriods: map[[2]uint]bool{}}
	access := NewAccessService(roster, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewAttendanceService(attendance, periods, roster, access, nil, time.Minute, validate, testLogger())

	err := svc.DeletePeriod(context.Background(), Actor{Role: models.RoleTeacher, ScopedID: 1}, 4)
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.Empty(t, periods.deleted)
}
