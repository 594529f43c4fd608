// Package scheduler implements the constraint-based academic timetable
// optimizer: greedy packing with retry/rebalance, GRASP, a genetic layer,
// and a relaxation/repair/exact-pass finishing stage.
package scheduler

// CourseInput describes one course's weekly teaching requirement.
type CourseInput struct {
	CourseID          string
	TeacherID         string
	WeeklyHours       float64
	ProgramSemesterID string
}

// RequiredMinutes converts the weekly-hours budget into minutes.
func (c CourseInput) RequiredMinutes() int {
	return int(c.WeeklyHours * 60)
}

// RoomInput describes a physical room. Capacity is informational only: it
// never reduces feasibility in this core.
type RoomInput struct {
	RoomID   string
	Capacity int
}

// TimeslotInput is one weekly recurring interval.
type TimeslotInput struct {
	TimeslotID     string
	Day            int // 0..6
	Block          int
	StartMinutes   int // 0..1439
	DurationMinutes int
}

// HourOfStart returns the absolute clock hour the slot begins in, used to
// test against lunch_blocks.
func (t TimeslotInput) HourOfStart() int {
	return t.StartMinutes / 60
}

// AdjacentTo reports whether t immediately precedes other on the same day.
func (t TimeslotInput) AdjacentTo(other TimeslotInput) bool {
	return t.Day == other.Day && t.StartMinutes+t.DurationMinutes == other.StartMinutes
}

// LunchBlock identifies a forbidden (day, hour) pair.
type LunchBlock struct {
	Day  int
	Hour int
}

// Constraints is the closed record every strategy reads; nothing here is a
// dynamic attribute bag.
type Constraints struct {
	// TeacherAvailability maps a teacher to the set of timeslot ids they may
	// teach in. An absent teacher key means "all slots are available".
	TeacherAvailability map[string]map[string]bool

	// RoomAllowed optionally restricts a room to a set of timeslot ids.
	// Absent room key means "all slots allowed".
	RoomAllowed map[string]map[string]bool

	// TeacherConflicts marks slots pre-blocked by locked prior schedules.
	TeacherConflicts map[string]map[string]bool

	MaxConsecutiveBlocks int
	MinGapBlocks         int
	MinGapMinutes        int
	ReserveBreakMinutes  int
	LunchBlocks          []LunchBlock
	MaxDailyHoursPerProgram int
	BalanceWeight        float64
	Jornadas             []string
}

// DefaultConstraints returns the documented baseline defaults, useful as a
// base a caller can override field-by-field.
func DefaultConstraints() Constraints {
	return Constraints{
		TeacherAvailability:     map[string]map[string]bool{},
		RoomAllowed:             map[string]map[string]bool{},
		TeacherConflicts:        map[string]map[string]bool{},
		MaxConsecutiveBlocks:    4,
		MinGapBlocks:            0,
		MinGapMinutes:           0,
		ReserveBreakMinutes:     0,
		MaxDailyHoursPerProgram: 6,
		BalanceWeight:           0.3,
	}
}

func (c Constraints) isLunch(day, hour int) bool {
	for _, lb := range c.LunchBlocks {
		if lb.Day == day && lb.Hour == hour {
			return true
		}
	}
	return false
}

func (c Constraints) teacherAllowed(teacherID, slotID string) bool {
	if allowed, ok := c.TeacherAvailability[teacherID]; ok {
		if !allowed[slotID] {
			return false
		}
	}
	if blocked, ok := c.TeacherConflicts[teacherID]; ok && blocked[slotID] {
		return false
	}
	return true
}

func (c Constraints) roomAllowed(roomID, slotID string) bool {
	allowed, ok := c.RoomAllowed[roomID]
	if !ok {
		return true
	}
	return allowed[slotID]
}

// AssignmentResult is one placed slice of a course's weekly schedule.
type AssignmentResult struct {
	CourseID           string
	RoomID             string
	TimeslotID         string
	StartOffsetMinutes int
	DurationMinutes    int
}

// QualityMetrics summarizes how good a SolveResult is.
type QualityMetrics struct {
	TotalAssigned      int
	TotalUnassigned    int
	UnassignedCount    int
	BalanceScore       float64
	DailyOverloadCount int
	AvgDailyLoadHours  float64
	MaxDailyLoadHours  float64
	TimeslotUtilization float64
}

// PerformanceMetrics records how the solve ran.
type PerformanceMetrics struct {
	RuntimeSeconds    float64
	RequestedCourses  int
	AssignedCourses   int
	RequestedMinutes  int
	AssignedMinutes   int
	FillRate          float64
}

// Diagnostics carries human-readable explanations of non-obvious outcomes.
type Diagnostics struct {
	Messages          []string
	UnassignedCauses  map[string][]string
}

// SolveResult is what every strategy (and the orchestrator) returns.
type SolveResult struct {
	Assignments        []AssignmentResult
	Unassigned         map[string]int
	QualityMetrics     QualityMetrics
	PerformanceMetrics PerformanceMetrics
	Diagnostics        Diagnostics
}

// score is the lexicographic tuple used to pick the best of several
// candidate results: (assigned_courses, -unassigned_count, fill_rate).
// balance_score is deliberately not consulted here, even though two
// results can tie on all three keys and still differ there.
type score struct {
	assignedCourses int
	unassignedCount int
	fillRate        float64
}

func (r *SolveResult) score() score {
	return score{
		assignedCourses: r.PerformanceMetrics.AssignedCourses,
		unassignedCount: r.QualityMetrics.UnassignedCount,
		fillRate:        r.PerformanceMetrics.FillRate,
	}
}

// better reports whether a beats b under the lexicographic ordering
// (assigned_courses desc, unassigned_count asc, fill_rate desc).
func (a score) better(b score) bool {
	if a.assignedCourses != b.assignedCourses {
		return a.assignedCourses > b.assignedCourses
	}
	if a.unassignedCount != b.unassignedCount {
		return a.unassignedCount < b.unassignedCount
	}
	return a.fillRate > b.fillRate
}

func selectBest(results ...*SolveResult) *SolveResult {
	var best *SolveResult
	var bestScore score
	for _, r := range results {
		if r == nil {
			continue
		}
		s := r.score()
		if best == nil || s.better(bestScore) {
			best = r
			bestScore = s
		}
	}
	return best
}
