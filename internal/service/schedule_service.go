// Package service wires the HTTP-facing DTOs to the scheduler core and the
// persistence bridge.
package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-core/internal/bridge"
	"github.com/noah-isme/timetable-core/internal/dto"
	"github.com/noah-isme/timetable-core/internal/scheduler"
	appErrors "github.com/noah-isme/timetable-core/pkg/errors"
)

type scheduleBridge interface {
	Save(ctx context.Context, req bridge.SaveRequest) ([]bridge.PersistedAssignment, error)
	Overview(ctx context.Context, programSemesterID, teacherID string) ([]bridge.OverviewRow, error)
}

// ScheduleService is the application-facing entry point the generate,
// save, and overview endpoints map onto.
type ScheduleService struct {
	bridge    scheduleBridge
	metrics   *scheduler.Metrics
	logger    *zap.Logger
	validator *validator.Validate
	defaults  scheduler.Constraints
	tuning    scheduler.Options
}

// NewScheduleService wires a ScheduleService. tuning carries the
// configured Grasp/Genetic/ExactPass parameters applied to every
// Orchestrate/OrchestrateParallel call; its Strategies field is ignored,
// since the strategy set comes from each request instead.
func NewScheduleService(b scheduleBridge, metrics *scheduler.Metrics, logger *zap.Logger, defaults scheduler.Constraints, tuning scheduler.Options) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{bridge: b, metrics: metrics, logger: logger, validator: validator.New(), defaults: defaults, tuning: tuning}
}

// Generate runs the optimizer over the request payload and returns the best
// proposal found.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	courses := make([]scheduler.CourseInput, 0, len(req.Courses))
	for _, c := range req.Courses {
		courses = append(courses, scheduler.CourseInput{
			CourseID:          c.CourseID,
			TeacherID:         c.TeacherID,
			WeeklyHours:       c.WeeklyHours,
			ProgramSemesterID: c.ProgramSemesterID,
		})
	}

	rooms := make([]scheduler.RoomInput, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		rooms = append(rooms, scheduler.RoomInput{RoomID: r.RoomID, Capacity: r.Capacity})
	}

	slots := make([]scheduler.TimeslotInput, 0, len(req.Timeslots))
	for _, t := range req.Timeslots {
		slots = append(slots, scheduler.TimeslotInput{
			TimeslotID:      t.TimeslotID,
			Day:             t.Day,
			Block:           t.Block,
			StartMinutes:    t.StartMinutes,
			DurationMinutes: t.DurationMinutes,
		})
	}

	cons := mergeConstraints(s.defaults, req.Constraints)

	var result *scheduler.SolveResult
	var err error
	strategies := toStrategies(req.Strategies)
	if len(strategies) == 0 {
		result, err = scheduler.Solve(ctx, courses, rooms, slots, cons)
	} else {
		opts := s.tuning
		opts.Strategies = strategies
		if req.Parallel {
			result, err = scheduler.OrchestrateParallel(ctx, courses, rooms, slots, cons, opts)
		} else {
			result, err = scheduler.Orchestrate(ctx, courses, rooms, slots, cons, opts)
		}
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Observe(strategyLabel(strategies), result)
	return toGenerateResponse(result), nil
}

// Save persists the assignments a caller picked out of a proposal.
func (s *ScheduleService) Save(ctx context.Context, req dto.SaveScheduleRequest) ([]dto.PersistedAssignmentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}

	candidates := make([]bridge.CandidateAssignment, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		candidates = append(candidates, bridge.CandidateAssignment{
			CourseID:           a.CourseID,
			RoomID:             a.RoomID,
			TimeslotID:         a.TimeslotID,
			DurationMinutes:    a.DurationMinutes,
			StartOffsetMinutes: a.StartOffsetMinutes,
		})
	}

	rows, err := s.bridge.Save(ctx, bridge.SaveRequest{Assignments: candidates, ReplaceExisting: req.ReplaceExisting})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PersistedAssignmentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PersistedAssignmentResponse{
			ID:                 r.ID,
			CourseID:           r.CourseID,
			RoomID:             r.RoomID,
			TimeslotID:         r.TimeslotID,
			ProgramSemesterID:  r.ProgramSemesterID,
			TeacherID:          r.TeacherID,
			DayOfWeek:          r.DayOfWeek,
			StartOffsetMinutes: r.StartOffsetMinutes,
			DurationMinutes:    r.DurationMinutes,
		})
	}
	return out, nil
}

// Overview projects the stored schedule.
func (s *ScheduleService) Overview(ctx context.Context, query dto.ScheduleOverviewQuery) ([]bridge.OverviewRow, error) {
	return s.bridge.Overview(ctx, query.ProgramSemesterID, query.TeacherID)
}

func toStrategies(names []string) []scheduler.Strategy {
	out := make([]scheduler.Strategy, 0, len(names))
	for _, n := range names {
		switch scheduler.Strategy(n) {
		case scheduler.StrategyGrasp, scheduler.StrategyGenetic, scheduler.StrategyRelaxCP:
			out = append(out, scheduler.Strategy(n))
		}
	}
	return out
}

func strategyLabel(strategies []scheduler.Strategy) string {
	if len(strategies) == 0 {
		return "greedy_retry"
	}
	if len(strategies) == 1 {
		return string(strategies[0])
	}
	return "orchestrated"
}

func mergeConstraints(base scheduler.Constraints, override *dto.ConstraintsRequest) scheduler.Constraints {
	if override == nil {
		return base
	}

	cons := base
	if override.TeacherAvailability != nil {
		cons.TeacherAvailability = toSetMap(override.TeacherAvailability)
	}
	if override.RoomAllowed != nil {
		cons.RoomAllowed = toSetMap(override.RoomAllowed)
	}
	if override.MaxConsecutiveBlocks > 0 {
		cons.MaxConsecutiveBlocks = override.MaxConsecutiveBlocks
	}
	if override.MinGapBlocks > 0 {
		cons.MinGapBlocks = override.MinGapBlocks
	}
	if override.MinGapMinutes > 0 {
		cons.MinGapMinutes = override.MinGapMinutes
	}
	if override.ReserveBreakMinutes > 0 {
		cons.ReserveBreakMinutes = override.ReserveBreakMinutes
	}
	if override.MaxDailyHoursPerProgram > 0 {
		cons.MaxDailyHoursPerProgram = override.MaxDailyHoursPerProgram
	}
	if override.BalanceWeight > 0 {
		cons.BalanceWeight = override.BalanceWeight
	}
	if len(override.Jornadas) > 0 {
		cons.Jornadas = override.Jornadas
	}
	if len(override.LunchBlocks) > 0 {
		lunch := make([]scheduler.LunchBlock, 0, len(override.LunchBlocks))
		for _, lb := range override.LunchBlocks {
			lunch = append(lunch, scheduler.LunchBlock{Day: lb.Day, Hour: lb.Hour})
		}
		cons.LunchBlocks = lunch
	}
	return cons
}

func toSetMap(in map[string][]string) map[string]map[string]bool {
	out := make(map[string]map[string]bool, len(in))
	for k, ids := range in {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		out[k] = set
	}
	return out
}

func toGenerateResponse(r *scheduler.SolveResult) *dto.GenerateScheduleResponse {
	assignments := make([]dto.AssignmentResponse, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		assignments = append(assignments, dto.AssignmentResponse{
			CourseID:           a.CourseID,
			RoomID:             a.RoomID,
			TimeslotID:         a.TimeslotID,
			StartOffsetMinutes: a.StartOffsetMinutes,
			DurationMinutes:    a.DurationMinutes,
		})
	}

	return &dto.GenerateScheduleResponse{
		Assignments: assignments,
		Unassigned:  r.Unassigned,
		QualityMetrics: dto.QualityMetricsResponse{
			TotalAssigned:       r.QualityMetrics.TotalAssigned,
			TotalUnassigned:     r.QualityMetrics.TotalUnassigned,
			UnassignedCount:     r.QualityMetrics.UnassignedCount,
			BalanceScore:        r.QualityMetrics.BalanceScore,
			DailyOverloadCount:  r.QualityMetrics.DailyOverloadCount,
			AvgDailyLoadHours:   r.QualityMetrics.AvgDailyLoadHours,
			MaxDailyLoadHours:   r.QualityMetrics.MaxDailyLoadHours,
			TimeslotUtilization: r.QualityMetrics.TimeslotUtilization,
		},
		PerformanceMetrics: dto.PerformanceMetricsResponse{
			RuntimeSeconds:   r.PerformanceMetrics.RuntimeSeconds,
			RequestedCourses: r.PerformanceMetrics.RequestedCourses,
			AssignedCourses:  r.PerformanceMetrics.AssignedCourses,
			RequestedMinutes: r.PerformanceMetrics.RequestedMinutes,
			AssignedMinutes:  r.PerformanceMetrics.AssignedMinutes,
			FillRate:         r.PerformanceMetrics.FillRate,
		},
		Messages:         r.Diagnostics.Messages,
		UnassignedCauses: r.Diagnostics.UnassignedCauses,
	}
}
