package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-core/internal/bridge"
	"github.com/noah-isme/timetable-core/internal/dto"
	"github.com/noah-isme/timetable-core/internal/scheduler"
)

type stubBridge struct {
	saveRows     []bridge.PersistedAssignment
	saveErr      error
	overviewRows []bridge.OverviewRow
	overviewErr  error
	capturedSave bridge.SaveRequest
	capturedPSID string
}

func (s *stubBridge) Save(ctx context.Context, req bridge.SaveRequest) ([]bridge.PersistedAssignment, error) {
	s.capturedSave = req
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.saveRows, nil
}

func (s *stubBridge) Overview(ctx context.Context, programSemesterID, teacherID string) ([]bridge.OverviewRow, error) {
	s.capturedPSID = programSemesterID
	if s.overviewErr != nil {
		return nil, s.overviewErr
	}
	return s.overviewRows, nil
}

func newTestScheduleService(b *stubBridge) *ScheduleService {
	metrics := scheduler.NewMetrics(prometheus.NewRegistry())
	return NewScheduleService(b, metrics, zap.NewNop(), scheduler.DefaultConstraints(), scheduler.Options{})
}

func TestScheduleServiceGenerateReturnsAssignments(t *testing.T) {
	svc := newTestScheduleService(&stubBridge{})
	req := dto.GenerateScheduleRequest{
		Courses: []dto.CourseLoadRequest{
			{CourseID: "c1", TeacherID: "t1", WeeklyHours: 1, ProgramSemesterID: "ps1"},
		},
		Rooms:     []dto.RoomRequest{{RoomID: "r1"}},
		Timeslots: []dto.TimeslotRequest{{TimeslotID: "ts1", DurationMinutes: 60}},
	}

	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Assignments, 1)
	assert.Equal(t, "c1", resp.Assignments[0].CourseID)
}

func TestScheduleServiceSaveDelegatesToBridge(t *testing.T) {
	b := &stubBridge{saveRows: []bridge.PersistedAssignment{{ID: "row-1", CourseID: "c1"}}}
	svc := newTestScheduleService(b)

	out, err := svc.Save(context.Background(), dto.SaveScheduleRequest{
		Assignments: []dto.SaveAssignmentRequest{{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "row-1", out[0].ID)
	assert.Len(t, b.capturedSave.Assignments, 1)
}

func TestScheduleServiceOverviewPassesThroughQuery(t *testing.T) {
	b := &stubBridge{overviewRows: []bridge.OverviewRow{{CourseID: "c1"}}}
	svc := newTestScheduleService(b)

	rows, err := svc.Overview(context.Background(), dto.ScheduleOverviewQuery{ProgramSemesterID: "ps1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ps1", b.capturedPSID)
}

func TestMergeConstraintsOverridesOnlyProvidedFields(t *testing.T) {
	base := scheduler.DefaultConstraints()
	base.MaxConsecutiveBlocks = 4

	override := &dto.ConstraintsRequest{MaxConsecutiveBlocks: 6}
	merged := mergeConstraints(base, override)

	assert.Equal(t, 6, merged.MaxConsecutiveBlocks)
	assert.Equal(t, base.MaxDailyHoursPerProgram, merged.MaxDailyHoursPerProgram)
}

func TestStrategyLabelNamesOrchestratedForMultipleStrategies(t *testing.T) {
	label := strategyLabel([]scheduler.Strategy{scheduler.StrategyGrasp, scheduler.StrategyGenetic})
	assert.Equal(t, "orchestrated", label)
}
