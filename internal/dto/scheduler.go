package dto

// CourseLoadRequest captures one course's weekly teaching requirement for a
// schedule generation request.
type CourseLoadRequest struct {
	CourseID          string  `json:"courseId" validate:"required"`
	TeacherID         string  `json:"teacherId" validate:"required"`
	WeeklyHours       float64 `json:"weeklyHours" validate:"required,gt=0"`
	ProgramSemesterID string  `json:"programSemesterId" validate:"required"`
}

// RoomRequest describes a room available to the generator.
type RoomRequest struct {
	RoomID   string `json:"roomId" validate:"required"`
	Capacity int    `json:"capacity" validate:"omitempty,min=0"`
}

// TimeslotRequest describes one recurring weekly interval.
type TimeslotRequest struct {
	TimeslotID      string `json:"timeslotId" validate:"required"`
	Day             int    `json:"day" validate:"min=0,max=6"`
	Block           int    `json:"block"`
	StartMinutes    int    `json:"startMinutes" validate:"min=0,max=1439"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gt=0"`
}

// LunchBlockRequest names a forbidden (day, hour) pair.
type LunchBlockRequest struct {
	Day  int `json:"day" validate:"min=0,max=6"`
	Hour int `json:"hour" validate:"min=0,max=23"`
}

// ConstraintsRequest carries the optional constraint overrides for a
// generation request.
type ConstraintsRequest struct {
	TeacherAvailability     map[string][]string `json:"teacherAvailability"`
	RoomAllowed             map[string][]string `json:"roomAllowed"`
	MaxConsecutiveBlocks    int                 `json:"maxConsecutiveBlocks" validate:"omitempty,min=1"`
	MinGapBlocks            int                 `json:"minGapBlocks" validate:"omitempty,min=0"`
	MinGapMinutes           int                 `json:"minGapMinutes" validate:"omitempty,min=0"`
	ReserveBreakMinutes     int                 `json:"reserveBreakMinutes" validate:"omitempty,min=0"`
	LunchBlocks             []LunchBlockRequest `json:"lunchBlocks"`
	MaxDailyHoursPerProgram int                 `json:"maxDailyHoursPerProgram" validate:"omitempty,min=1"`
	BalanceWeight           float64             `json:"balanceWeight" validate:"omitempty,min=0,max=1"`
	Jornadas                []string            `json:"jornadas"`
}

// GenerateScheduleRequest instructs the optimizer to build a proposal for a
// set of courses, rooms, and timeslots.
type GenerateScheduleRequest struct {
	Courses     []CourseLoadRequest `json:"courses" validate:"required,min=1,dive"`
	Rooms       []RoomRequest       `json:"rooms" validate:"required,min=1,dive"`
	Timeslots   []TimeslotRequest   `json:"timeslots" validate:"required,min=1,dive"`
	Constraints *ConstraintsRequest `json:"constraints"`
	Strategies  []string            `json:"strategies" validate:"omitempty,dive,oneof=grasp genetic relax_cp"`
	Parallel    bool                `json:"parallel"`
}

// AssignmentResponse is one placed slice of a course's weekly schedule.
type AssignmentResponse struct {
	CourseID           string `json:"courseId"`
	RoomID             string `json:"roomId"`
	TimeslotID         string `json:"timeslotId"`
	StartOffsetMinutes int    `json:"startOffsetMinutes"`
	DurationMinutes    int    `json:"durationMinutes"`
}

// QualityMetricsResponse mirrors scheduler.QualityMetrics.
type QualityMetricsResponse struct {
	TotalAssigned       int     `json:"totalAssigned"`
	TotalUnassigned     int     `json:"totalUnassigned"`
	UnassignedCount     int     `json:"unassignedCount"`
	BalanceScore        float64 `json:"balanceScore"`
	DailyOverloadCount  int     `json:"dailyOverloadCount"`
	AvgDailyLoadHours   float64 `json:"avgDailyLoadHours"`
	MaxDailyLoadHours   float64 `json:"maxDailyLoadHours"`
	TimeslotUtilization float64 `json:"timeslotUtilization"`
}

// PerformanceMetricsResponse mirrors scheduler.PerformanceMetrics.
type PerformanceMetricsResponse struct {
	RuntimeSeconds   float64 `json:"runtimeSeconds"`
	RequestedCourses int     `json:"requestedCourses"`
	AssignedCourses  int     `json:"assignedCourses"`
	RequestedMinutes int     `json:"requestedMinutes"`
	AssignedMinutes  int     `json:"assignedMinutes"`
	FillRate         float64 `json:"fillRate"`
}

// GenerateScheduleResponse returns the built timetable proposal.
type GenerateScheduleResponse struct {
	Assignments        []AssignmentResponse        `json:"assignments"`
	Unassigned         map[string]int              `json:"unassigned"`
	QualityMetrics     QualityMetricsResponse       `json:"qualityMetrics"`
	PerformanceMetrics PerformanceMetricsResponse   `json:"performanceMetrics"`
	Messages           []string                     `json:"messages"`
	UnassignedCauses   map[string][]string          `json:"unassignedCauses,omitempty"`
}

// SaveAssignmentRequest is one entry of a save-assignments request.
type SaveAssignmentRequest struct {
	CourseID           string `json:"courseId" validate:"required"`
	RoomID             string `json:"roomId" validate:"required"`
	TimeslotID         string `json:"timeslotId" validate:"required"`
	DurationMinutes    *int   `json:"durationMinutes" validate:"omitempty,gt=0"`
	StartOffsetMinutes *int   `json:"startOffsetMinutes" validate:"omitempty,min=0"`
}

// SaveScheduleRequest persists a batch of assignments.
type SaveScheduleRequest struct {
	Assignments     []SaveAssignmentRequest `json:"assignments" validate:"required,min=1,dive"`
	ReplaceExisting bool                     `json:"replaceExisting"`
}

// PersistedAssignmentResponse is one stored schedule entry.
type PersistedAssignmentResponse struct {
	ID                 string `json:"id"`
	CourseID           string `json:"courseId"`
	RoomID             string `json:"roomId"`
	TimeslotID         string `json:"timeslotId"`
	ProgramSemesterID  string `json:"programSemesterId"`
	TeacherID          string `json:"teacherId"`
	DayOfWeek          int    `json:"dayOfWeek"`
	StartOffsetMinutes int    `json:"startOffsetMinutes"`
	DurationMinutes    int    `json:"durationMinutes"`
}

// ScheduleOverviewQuery filters the stored-schedule overview by cohort
// and/or teacher.
type ScheduleOverviewQuery struct {
	ProgramSemesterID string `form:"programSemesterId" json:"programSemesterId"`
	TeacherID         string `form:"teacherId" json:"teacherId"`
}
