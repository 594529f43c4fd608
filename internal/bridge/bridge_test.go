package bridge

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/timetable-core/pkg/errors"
)

type stubCourseLookup map[string]CourseMeta

func (s stubCourseLookup) Course(_ context.Context, id string) (CourseMeta, error) {
	meta, ok := s[id]
	if !ok {
		return CourseMeta{}, sql.ErrNoRows
	}
	return meta, nil
}

type stubRoomLookup map[string]RoomMeta

func (s stubRoomLookup) Room(_ context.Context, id string) (RoomMeta, error) {
	meta, ok := s[id]
	if !ok {
		return RoomMeta{}, sql.ErrNoRows
	}
	return meta, nil
}

type stubTimeslotLookup map[string]TimeslotMeta

func (s stubTimeslotLookup) Timeslot(_ context.Context, id string) (TimeslotMeta, error) {
	meta, ok := s[id]
	if !ok {
		return TimeslotMeta{}, sql.ErrNoRows
	}
	return meta, nil
}

type stubRepo struct {
	existing []PersistedAssignment
	upserted []PersistedAssignment
	deleted  []string
}

func (r *stubRepo) UpsertBatch(_ context.Context, _ sqlx.ExtContext, rows []PersistedAssignment) error {
	r.upserted = append(r.upserted, rows...)
	return nil
}

func (r *stubRepo) DeleteByProgramSemesters(_ context.Context, _ sqlx.ExtContext, ids []string) error {
	r.deleted = append(r.deleted, ids...)
	return nil
}

func (r *stubRepo) ListExisting(_ context.Context) ([]PersistedAssignment, error) {
	return r.existing, nil
}

func (r *stubRepo) Overview(_ context.Context, _, _ string) ([]OverviewRow, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo assignmentRepository, courses stubCourseLookup, rooms stubRoomLookup, slots stubTimeslotLookup) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	mock.ExpectBegin()
	mock.ExpectCommit()
	txRepo := NewRepository(sqlxDB)
	return NewService(repo, courses, rooms, slots, txRepo, nil), mock, func() { db.Close() }
}

func fixtures() (stubCourseLookup, stubRoomLookup, stubTimeslotLookup) {
	courses := stubCourseLookup{
		"c1": {CourseID: "c1", TeacherID: "t1", ProgramSemesterID: "ps1"},
		"c2": {CourseID: "c2", TeacherID: "t2", ProgramSemesterID: "ps1"},
	}
	rooms := stubRoomLookup{
		"r1": {RoomID: "r1", Code: "A-101"},
		"r2": {RoomID: "r2", Code: "A-102"},
	}
	slots := stubTimeslotLookup{
		"ts1": {TimeslotID: "ts1", Day: 1, StartMinutes: 480, DurationMinutes: 60},
		"ts2": {TimeslotID: "ts2", Day: 1, StartMinutes: 540, DurationMinutes: 60},
	}
	return courses, rooms, slots
}

func TestServiceSavePersistsNonConflictingBatch(t *testing.T) {
	courses, rooms, slots := fixtures()
	repo := &stubRepo{}
	svc, mock, cleanup := newTestService(t, repo, courses, rooms, slots)
	defer cleanup()

	req := SaveRequest{Assignments: []CandidateAssignment{
		{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"},
		{CourseID: "c2", RoomID: "r2", TimeslotID: "ts2"},
	}}

	rows, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Len(t, repo.upserted, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceSaveRejectsRoomOverlapAgainstExisting(t *testing.T) {
	courses, rooms, slots := fixtures()
	existing := []PersistedAssignment{
		{CourseID: "c2", RoomID: "r1", TimeslotID: "ts1", ProgramSemesterID: "ps1", TeacherID: "t2", DayOfWeek: 1,
			StartTime: dayTime(1, 480), EndTime: dayTime(1, 540)},
	}
	repo := &stubRepo{existing: existing}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewService(repo, courses, rooms, slots, NewRepository(sqlxDB), nil)

	req := SaveRequest{Assignments: []CandidateAssignment{
		{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"},
	}}

	_, err = svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloque ocupado")
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, repo.upserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceSaveRejectsTeacherOverlapWithinSameRequest(t *testing.T) {
	courses, rooms, slots := fixtures()
	repo := &stubRepo{}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewService(repo, courses, rooms, slots, NewRepository(sqlxDB), nil)

	req := SaveRequest{Assignments: []CandidateAssignment{
		{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"},
		{CourseID: "c1", RoomID: "r2", TimeslotID: "ts1"},
	}}

	_, err = svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloque ocupado")
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceSaveReplaceExistingClearsOldRows(t *testing.T) {
	courses, rooms, slots := fixtures()
	existing := []PersistedAssignment{
		{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1", ProgramSemesterID: "ps1", TeacherID: "t1", DayOfWeek: 1,
			StartTime: dayTime(1, 480), EndTime: dayTime(1, 540)},
	}
	repo := &stubRepo{existing: existing}
	svc, mock, cleanup := newTestService(t, repo, courses, rooms, slots)
	defer cleanup()

	req := SaveRequest{
		ReplaceExisting: true,
		Assignments: []CandidateAssignment{
			{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"},
		},
	}

	_, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, repo.deleted, "ps1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceSaveRejectsUnknownCourse(t *testing.T) {
	courses, rooms, slots := fixtures()
	repo := &stubRepo{}
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	svc := NewService(repo, courses, rooms, slots, NewRepository(sqlx.NewDb(db, "sqlmock")), nil)

	req := SaveRequest{Assignments: []CandidateAssignment{
		{CourseID: "missing", RoomID: "r1", TimeslotID: "ts1"},
	}}

	_, err = svc.Save(context.Background(), req)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
