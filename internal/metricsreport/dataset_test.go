package metricsreport

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatasetMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestPartitionByTermLatestPicksMostRecentTerm(t *testing.T) {
	all := []courseRow{
		{CourseID: "c1", Term: "2024-1"},
		{CourseID: "c2", Term: "2024-2"},
		{CourseID: "c3", Term: "2024-1"},
	}

	target, locked, label, err := partitionByTerm(all, "latest")
	require.NoError(t, err)
	assert.Equal(t, "2024-2", label)
	assert.Len(t, target, 1)
	assert.Len(t, locked, 2)
}

func TestPartitionByTermAllTreatsEveryCourseAsTarget(t *testing.T) {
	all := []courseRow{{CourseID: "c1", Term: "2024-1"}, {CourseID: "c2", Term: "2024-2"}}

	target, locked, label, err := partitionByTerm(all, "all")
	require.NoError(t, err)
	assert.Equal(t, "todos", label)
	assert.Len(t, target, 2)
	assert.Empty(t, locked)
}

func TestPartitionByTermRejectsUnknownTerm(t *testing.T) {
	all := []courseRow{{CourseID: "c1", Term: "2024-1"}}

	_, _, _, err := partitionByTerm(all, "2099-9")
	require.Error(t, err)
}

func TestPartitionByTermNamedTermSeparatesLocked(t *testing.T) {
	all := []courseRow{
		{CourseID: "c1", Term: "2024-1"},
		{CourseID: "c2", Term: "2024-2"},
	}

	target, locked, label, err := partitionByTerm(all, "2024-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-1", label)
	require.Len(t, target, 1)
	require.Len(t, locked, 1)
	assert.Equal(t, "c2", locked[0].CourseID)
}

func TestLoadDatasetRejectsEmptyCourseCatalog(t *testing.T) {
	db, mock, cleanup := newDatasetMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id AS course_id").WillReturnRows(sqlmock.NewRows([]string{"course_id", "teacher_id", "weekly_hours", "program_semester_id", "term"}))

	_, err := LoadDataset(context.Background(), db, "latest")
	require.Error(t, err)
}

func TestLoadDatasetPartitionsByLatestTerm(t *testing.T) {
	db, mock, cleanup := newDatasetMock(t)
	defer cleanup()

	courseCols := []string{"course_id", "teacher_id", "weekly_hours", "program_semester_id", "term"}
	mock.ExpectQuery("SELECT id AS course_id").WillReturnRows(
		sqlmock.NewRows(courseCols).
			AddRow("c1", "t1", 4.0, "ps1", "2024-1").
			AddRow("c2", "t2", 2.0, "ps1", "2024-2"),
	)
	mock.ExpectQuery("SELECT id AS room_id").WillReturnRows(
		sqlmock.NewRows([]string{"room_id", "capacity"}).AddRow("r1", 30),
	)
	mock.ExpectQuery("SELECT id AS timeslot_id").WillReturnRows(
		sqlmock.NewRows([]string{"timeslot_id", "day_of_week", "start_minutes", "end_minutes"}).
			AddRow("ts1", 1, 420, 480),
	)

	dataset, err := LoadDataset(context.Background(), db, "latest")
	require.NoError(t, err)
	assert.Equal(t, "2024-2", dataset.TermLabel)
	require.Len(t, dataset.TargetCourses, 1)
	assert.Equal(t, "c2", dataset.TargetCourses[0].CourseID)
	require.Len(t, dataset.LockedCourses, 1)
	assert.Equal(t, "c1", dataset.LockedCourses[0].CourseID)
	assert.Equal(t, []string{"c1"}, dataset.LockedCourseIDs)
}

func TestLoadAssignmentsEmptyCourseIDsShortCircuits(t *testing.T) {
	db, _, cleanup := newDatasetMock(t)
	defer cleanup()

	rows, err := LoadAssignments(context.Background(), db, []string{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestToTimeslotInputsAssignsSequentialBlocksPerDay(t *testing.T) {
	rows := []timeslotRow{
		{TimeslotID: "ts-mon-2", Day: 1, StartMinutes: 480, EndMinutes: 540},
		{TimeslotID: "ts-mon-1", Day: 1, StartMinutes: 420, EndMinutes: 480},
		{TimeslotID: "ts-tue-1", Day: 2, StartMinutes: 420, EndMinutes: 480},
	}

	inputs := toTimeslotInputs(rows)
	byID := map[string]int{}
	for _, in := range inputs {
		byID[in.TimeslotID] = in.Block
	}
	assert.Equal(t, 0, byID["ts-mon-1"])
	assert.Equal(t, 1, byID["ts-mon-2"])
	assert.Equal(t, 0, byID["ts-tue-1"])
}
