package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSlots() []TimeslotInput {
	var slots []TimeslotInput
	id := 0
	for day := 0; day < 3; day++ {
		start := 480
		for block := 0; block < 6; block++ {
			id++
			slots = append(slots, TimeslotInput{
				TimeslotID:      idToStr(id),
				Day:             day,
				Block:           block,
				StartMinutes:    start,
				DurationMinutes: 60,
			})
			start += 60
		}
	}
	return slots
}

func idToStr(id int) string {
	return "ts" + string(rune('0'+id/10)) + string(rune('0'+id%10))
}

func sampleRooms() []RoomInput {
	return []RoomInput{{RoomID: "r1", Capacity: 30}, {RoomID: "r2", Capacity: 30}}
}

func TestSolveAssignsAllCoursesWhenRoomEnough(t *testing.T) {
	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 2, ProgramSemesterID: "ps1"},
		{CourseID: "c2", TeacherID: "t2", WeeklyHours: 3, ProgramSemesterID: "ps1"},
	}
	cons := DefaultConstraints()

	result, err := Solve(context.Background(), courses, sampleRooms(), sampleSlots(), cons)
	require.NoError(t, err)
	assert.Empty(t, result.Unassigned)
	assert.Equal(t, 2, result.PerformanceMetrics.AssignedCourses)
	assert.Equal(t, 1.0, result.PerformanceMetrics.FillRate)
}

func TestSolveRespectsTeacherAvailability(t *testing.T) {
	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 1, ProgramSemesterID: "ps1"},
	}
	cons := DefaultConstraints()
	cons.TeacherAvailability = map[string]map[string]bool{
		"t1": {"ts01": true},
	}

	result, err := Solve(context.Background(), courses, sampleRooms(), sampleSlots(), cons)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "ts01", result.Assignments[0].TimeslotID)
}

func TestSolveRejectsEmptyCourses(t *testing.T) {
	_, err := Solve(context.Background(), nil, sampleRooms(), sampleSlots(), DefaultConstraints())
	require.Error(t, err)
}

func TestSolveCapsAssignmentAtDailyCeilingAndLeavesRemainderUnassigned(t *testing.T) {
	var daySlots []TimeslotInput
	for _, s := range sampleSlots() {
		if s.Day == 0 {
			daySlots = append(daySlots, s)
		}
	}

	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 8, ProgramSemesterID: "ps1"},
	}
	cons := DefaultConstraints()
	cons.MaxDailyHoursPerProgram = 6
	cons.MaxConsecutiveBlocks = 10

	result, err := Solve(context.Background(), courses, sampleRooms(), daySlots, cons)
	require.NoError(t, err)

	var assignedMinutes int
	for _, a := range result.Assignments {
		assignedMinutes += a.DurationMinutes
	}
	assert.LessOrEqual(t, assignedMinutes, 360)
	require.Contains(t, result.Unassigned, "c1")
	assert.GreaterOrEqual(t, result.Unassigned["c1"], 120)
}

func TestOrchestrateGraspAndGeneticImproveOrMatchGreedy(t *testing.T) {
	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 4, ProgramSemesterID: "ps1"},
		{CourseID: "c2", TeacherID: "t1", WeeklyHours: 4, ProgramSemesterID: "ps1"},
		{CourseID: "c3", TeacherID: "t2", WeeklyHours: 3, ProgramSemesterID: "ps2"},
	}
	cons := DefaultConstraints()
	opts := Options{Strategies: []Strategy{StrategyGrasp, StrategyGenetic}, Grasp: GraspOptions{Iterations: 3}, Genetic: GeneticOptions{PopulationSize: 4, Generations: 3}}

	baseline, err := Solve(context.Background(), courses, sampleRooms(), sampleSlots(), cons)
	require.NoError(t, err)

	best, err := Orchestrate(context.Background(), courses, sampleRooms(), sampleSlots(), cons, opts)
	require.NoError(t, err)

	assert.True(t, best.score().better(baseline.score()) || best.score() == baseline.score())
}

func TestOrchestrateParallelProducesSameQualityAsSequential(t *testing.T) {
	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 2, ProgramSemesterID: "ps1"},
		{CourseID: "c2", TeacherID: "t2", WeeklyHours: 2, ProgramSemesterID: "ps1"},
	}
	cons := DefaultConstraints()
	opts := Options{Strategies: []Strategy{StrategyGrasp}, Grasp: GraspOptions{Iterations: 2}}

	result, err := OrchestrateParallel(context.Background(), courses, sampleRooms(), sampleSlots(), cons, opts)
	require.NoError(t, err)
	assert.Empty(t, result.Unassigned)

	sequential, err := Orchestrate(context.Background(), courses, sampleRooms(), sampleSlots(), cons, opts)
	require.NoError(t, err)
	assert.Equal(t, sequential.score(), result.score())
}

func TestRelaxCPRecoversUnassignedCoursesWhenPossible(t *testing.T) {
	tightSlots := sampleSlots()[:2]
	courses := []CourseInput{
		{CourseID: "c1", TeacherID: "t1", WeeklyHours: 1, ProgramSemesterID: "ps1"},
		{CourseID: "c2", TeacherID: "t1", WeeklyHours: 1, ProgramSemesterID: "ps1"},
	}
	cons := DefaultConstraints()

	relaxed := solveRelaxedCP(courses, sampleRooms(), tightSlots, cons, ExactPassOptions{})
	assert.Equal(t, 0, relaxed.QualityMetrics.UnassignedCount)
}

func TestSelectBestPicksHigherAssignedCourses(t *testing.T) {
	a := &SolveResult{PerformanceMetrics: PerformanceMetrics{AssignedCourses: 2, FillRate: 0.5}}
	b := &SolveResult{PerformanceMetrics: PerformanceMetrics{AssignedCourses: 3, FillRate: 0.1}}
	best := selectBest(a, b)
	assert.Same(t, b, best)
}

func TestConstraintsFromLockedBlocksTeacherSlots(t *testing.T) {
	locked := []AssignmentResult{{CourseID: "old1", TimeslotID: "ts01"}}
	teacherByCourse := map[string]string{"old1": "t1"}
	cons := ConstraintsFromLocked(locked, teacherByCourse, DefaultConstraints())
	assert.True(t, cons.TeacherConflicts["t1"]["ts01"])
}
