package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/timetable-core/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context) (*sqlx.Tx, error)
}

type assignmentRepository interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []PersistedAssignment) error
	DeleteByProgramSemesters(ctx context.Context, exec sqlx.ExtContext, programSemesterIDs []string) error
	ListExisting(ctx context.Context) ([]PersistedAssignment, error)
	Overview(ctx context.Context, programSemesterID, teacherID string) ([]OverviewRow, error)
}

// Service is the persistence bridge: it takes the scheduler
// core's candidate assignments, resolves their metadata, checks them for
// overlap against whatever is already stored, and commits the whole batch
// atomically.
type Service struct {
	repo      assignmentRepository
	courses   CourseLookup
	rooms     RoomLookup
	timeslots TimeslotLookup
	tx        txProvider
	logger    *zap.Logger
}

// NewService wires a Service against its lookups and storage.
func NewService(repo assignmentRepository, courses CourseLookup, rooms RoomLookup, timeslots TimeslotLookup, tx txProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, courses: courses, rooms: rooms, timeslots: timeslots, tx: tx, logger: logger}
}

type interval struct {
	start, end int
}

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// resolved is one candidate assignment enriched with the metadata needed to
// group it for overlap checking and to derive its stored row.
type resolved struct {
	candidate CandidateAssignment
	course    CourseMeta
	slot      TimeslotMeta
	interval  interval
}

// Save validates and persists req.Assignments. Any overlap against
// an existing stored entry — or against another entry in the same request —
// fails the whole batch with no partial write, reporting the conflict in the
// user-facing "bloque ocupado" idiom.
func (s *Service) Save(ctx context.Context, req SaveRequest) ([]PersistedAssignment, error) {
	if len(req.Assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignments must not be empty")
	}

	resolvedRows, err := s.resolveAll(ctx, req.Assignments)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListExisting(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing assignments")
	}

	replacedSemesters := map[string]bool{}
	if req.ReplaceExisting {
		for _, r := range resolvedRows {
			replacedSemesters[r.course.ProgramSemesterID] = true
		}
		filtered := existing[:0]
		for _, e := range existing {
			if !replacedSemesters[e.ProgramSemesterID] {
				filtered = append(filtered, e)
			}
		}
		existing = filtered
	}

	if conflict := findConflict(resolvedRows, existing); conflict != "" {
		return nil, appErrors.Clone(appErrors.ErrBlockOccupied, fmt.Sprintf("bloque ocupado: %s", conflict))
	}

	tx, err := s.tx.BeginTxx(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if req.ReplaceExisting {
		semesterIDs := make([]string, 0, len(replacedSemesters))
		for id := range replacedSemesters {
			semesterIDs = append(semesterIDs, id)
		}
		if err = s.repo.DeleteByProgramSemesters(ctx, tx, semesterIDs); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear replaced assignments")
			return nil, err
		}
	}

	rows := make([]PersistedAssignment, 0, len(resolvedRows))
	now := time.Now().UTC()
	for _, r := range resolvedRows {
		rows = append(rows, PersistedAssignment{
			ID:                 uuid.NewString(),
			CourseID:           r.course.CourseID,
			RoomID:             r.candidate.RoomID,
			TimeslotID:         r.candidate.TimeslotID,
			ProgramSemesterID:  r.course.ProgramSemesterID,
			TeacherID:          r.course.TeacherID,
			DayOfWeek:          r.slot.Day,
			StartOffsetMinutes: r.interval.start - r.slot.StartMinutes,
			DurationMinutes:    r.interval.end - r.interval.start,
			StartTime:          dayTime(r.slot.Day, r.interval.start),
			EndTime:            dayTime(r.slot.Day, r.interval.end),
			CreatedAt:          now,
		})
	}

	if err = s.repo.UpsertBatch(ctx, tx, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignment transaction")
		return nil, err
	}

	s.logger.Info("persisted schedule assignments", zap.Int("count", len(rows)), zap.Bool("replace_existing", req.ReplaceExisting))
	return rows, nil
}

// Overview returns the stored schedule projected for display, optionally
// scoped to a program_semester_id and/or teacher_id.
func (s *Service) Overview(ctx context.Context, programSemesterID, teacherID string) ([]OverviewRow, error) {
	rows, err := s.repo.Overview(ctx, programSemesterID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule overview")
	}
	return rows, nil
}

func (s *Service) resolveAll(ctx context.Context, candidates []CandidateAssignment) ([]resolved, error) {
	out := make([]resolved, 0, len(candidates))
	for _, c := range candidates {
		course, err := s.courses.Course(ctx, c.CourseID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", c.CourseID))
		}
		if _, err := s.rooms.Room(ctx, c.RoomID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %s not found", c.RoomID))
		}
		slot, err := s.timeslots.Timeslot(ctx, c.TimeslotID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("timeslot %s not found", c.TimeslotID))
		}

		offset := 0
		if c.StartOffsetMinutes != nil {
			offset = *c.StartOffsetMinutes
		}
		duration := slot.DurationMinutes
		if c.DurationMinutes != nil {
			duration = *c.DurationMinutes
		}
		if offset < 0 || duration <= 0 || offset+duration > slot.DurationMinutes {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("assignment for course %s does not fit within timeslot %s", c.CourseID, c.TimeslotID))
		}

		start := slot.StartMinutes + offset
		out = append(out, resolved{
			candidate: c,
			course:    course,
			slot:      slot,
			interval:  interval{start: start, end: start + duration},
		})
	}
	return out, nil
}

// findConflict checks every resolved candidate against the existing stored
// rows and against every other candidate in the same batch, grouped by
// (room, day), (teacher, day), and (cohort, day). It returns a human
// readable description of the first conflict found, or "" if none.
func findConflict(candidates []resolved, existing []PersistedAssignment) string {
	type group struct {
		key      string
		interval interval
		label    string
	}

	var groups []group
	for _, e := range existing {
		iv := interval{start: dayMinutes(e.DayOfWeek, e.StartTime), end: dayMinutes(e.DayOfWeek, e.EndTime)}
		groups = append(groups,
			group{key: "room|" + e.RoomID + "|" + dayKey(e.DayOfWeek), interval: iv, label: fmt.Sprintf("sala ya ocupada el día %d", e.DayOfWeek)},
			group{key: "teacher|" + e.TeacherID + "|" + dayKey(e.DayOfWeek), interval: iv, label: fmt.Sprintf("docente ya ocupado el día %d", e.DayOfWeek)},
			group{key: "cohort|" + e.ProgramSemesterID + "|" + dayKey(e.DayOfWeek), interval: iv, label: fmt.Sprintf("cohorte ya ocupada el día %d", e.DayOfWeek)},
		)
	}

	for i, c := range candidates {
		roomKey := "room|" + c.candidate.RoomID + "|" + dayKey(c.slot.Day)
		teacherKey := "teacher|" + c.course.TeacherID + "|" + dayKey(c.slot.Day)
		cohortKey := "cohort|" + c.course.ProgramSemesterID + "|" + dayKey(c.slot.Day)

		for _, g := range groups {
			if (g.key == roomKey || g.key == teacherKey || g.key == cohortKey) && g.interval.overlaps(c.interval) {
				return g.label
			}
		}

		// Check against every later candidate in the same batch too, so an
		// internally conflicting request fails before anything is written.
		for j := i + 1; j < len(candidates); j++ {
			other := candidates[j]
			if !c.interval.overlaps(other.interval) || c.slot.Day != other.slot.Day {
				continue
			}
			if c.candidate.RoomID == other.candidate.RoomID {
				return "sala ya ocupada dentro de la misma solicitud"
			}
			if c.course.TeacherID == other.course.TeacherID {
				return "docente ya ocupado dentro de la misma solicitud"
			}
			if c.course.ProgramSemesterID == other.course.ProgramSemesterID {
				return "cohorte ya ocupada dentro de la misma solicitud"
			}
		}
	}
	return ""
}

func dayKey(day int) string {
	return fmt.Sprintf("%d", day)
}

// dayMinutes extracts the day-local minute offset a stored StartTime/EndTime
// encodes; grouping already keys on day-of-week, so the day component of
// dayTime's anchor date carries no further weight here.
func dayMinutes(_ int, t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// dayTime anchors an absolute (day, minutes-of-day) pair to a fixed
// reference Monday so interval arithmetic on stored rows stays simple; the
// date component itself carries no calendar meaning, only day-of-week.
func dayTime(day, minutesOfDay int) time.Time {
	base := time.Date(2024, time.January, 1+day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minutesOfDay%1440) * time.Minute)
}
