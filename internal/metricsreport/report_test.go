package metricsreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountConflictsCountsExcessBookingsPerSlot(t *testing.T) {
	assignments := []assignmentRow{
		{CourseID: "c1", RoomID: "r1", TimeslotID: "ts1"},
		{CourseID: "c2", RoomID: "r1", TimeslotID: "ts1"},
		{CourseID: "c3", RoomID: "r2", TimeslotID: "ts2"},
	}
	teacherByCourse := map[string]string{"c1": "t1", "c2": "t1", "c3": "t2"}

	counts := countConflicts(assignments, teacherByCourse)

	assert.Equal(t, 1, counts.Teacher)
	assert.Equal(t, 1, counts.Room)
	assert.Equal(t, 2, counts.Total)
}

func TestDurationStatsSingleSampleHasZeroStdDev(t *testing.T) {
	avg, stdDev := durationStats([]float64{2.5})
	assert.Equal(t, 2.5, avg)
	assert.Zero(t, stdDev)
}

func TestDurationStatsEmptyIsZero(t *testing.T) {
	avg, stdDev := durationStats(nil)
	assert.Zero(t, avg)
	assert.Zero(t, stdDev)
}

func TestReportCRFullResolutionIsHundredPercent(t *testing.T) {
	r := Report{
		BaselineConflicts: conflictCounts{Total: 10},
		FinalConflicts:    conflictCounts{Total: 0},
	}
	assert.Equal(t, 100.0, r.CR())
}

func TestReportCRNoBaselineConflictsIsHundredPercent(t *testing.T) {
	r := Report{}
	assert.Equal(t, 100.0, r.CR())
}

func TestReportCRWorsenedConflictsClampsToZero(t *testing.T) {
	r := Report{
		BaselineConflicts: conflictCounts{Total: 2},
		FinalConflicts:    conflictCounts{Total: 5},
	}
	assert.Equal(t, 0.0, r.CR())
}

func TestReportTextIncludesKeyMetrics(t *testing.T) {
	r := Report{
		Label:     "escenario",
		Runs:      2,
		Durations: []float64{1.0, 1.5},
		TermLabel: "2024-2",
		BaselineConflicts: conflictCounts{Total: 4, Teacher: 3, Room: 1},
		FinalConflicts:    conflictCounts{Total: 1, Teacher: 1, Room: 0},
	}

	text := r.Text()
	assert.Contains(t, text, "escenario")
	assert.Contains(t, text, "2024-2")
	assert.Contains(t, text, "CR real: 75.00 %")
}
