// Package metricsreport implements the offline Tg/CR measurement tool.
// It loads a snapshot of courses, rooms, and timeslots straight from
// the catalog tables, runs the optimizer a configurable number of times,
// and reports generation time and conflict-resolution statistics.
package metricsreport

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-core/internal/scheduler"
)

// courseRow is one catalog row, term included so locked (other-term) courses
// can be separated from the target set.
type courseRow struct {
	CourseID          string  `db:"course_id"`
	TeacherID         string  `db:"teacher_id"`
	WeeklyHours       float64 `db:"weekly_hours"`
	ProgramSemesterID string  `db:"program_semester_id"`
	Term              string  `db:"term"`
}

type roomRow struct {
	RoomID   string `db:"room_id"`
	Capacity int    `db:"capacity"`
}

type timeslotRow struct {
	TimeslotID   string `db:"timeslot_id"`
	Day          int    `db:"day_of_week"`
	StartMinutes int    `db:"start_minutes"`
	EndMinutes   int    `db:"end_minutes"`
}

type assignmentRow struct {
	CourseID   string `db:"course_id"`
	RoomID     string `db:"room_id"`
	TimeslotID string `db:"timeslot_id"`
}

// Dataset is everything one measurement run needs: the target term's
// courses (the ones the optimizer will place), the other terms' courses
// (locked, contributing teacher conflicts only), and the room/timeslot
// catalog.
type Dataset struct {
	TargetCourses  []courseRow
	LockedCourses  []courseRow
	Rooms          []roomRow
	Timeslots      []timeslotRow
	TermLabel      string
	LockedCourseIDs []string
}

// LoadDataset partitions the course catalog by term the same way the
// original report tool does: "latest" picks the most recent term present,
// "all" treats every course as a target with nothing locked, and any other
// value must name an existing term exactly.
func LoadDataset(ctx context.Context, db *sqlx.DB, termOption string) (*Dataset, error) {
	var allCourses []courseRow
	if err := sqlx.SelectContext(ctx, db, &allCourses,
		`SELECT id AS course_id, teacher_id, weekly_hours, program_semester_id, term FROM courses`); err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	if len(allCourses) == 0 {
		return nil, fmt.Errorf("no courses available to measure scheduler metrics")
	}

	var rooms []roomRow
	if err := sqlx.SelectContext(ctx, db, &rooms, `SELECT id AS room_id, capacity FROM rooms`); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	var timeslots []timeslotRow
	if err := sqlx.SelectContext(ctx, db, &timeslots,
		`SELECT id AS timeslot_id, day_of_week, start_minutes, end_minutes FROM timeslots`); err != nil {
		return nil, fmt.Errorf("load timeslots: %w", err)
	}
	if len(timeslots) == 0 {
		return nil, fmt.Errorf("timeslot catalog is empty; cannot measure scheduler metrics")
	}

	target, locked, termLabel, err := partitionByTerm(allCourses, termOption)
	if err != nil {
		return nil, err
	}

	lockedIDs := make([]string, 0, len(locked))
	for _, c := range locked {
		lockedIDs = append(lockedIDs, c.CourseID)
	}

	return &Dataset{
		TargetCourses:   target,
		LockedCourses:   locked,
		Rooms:           rooms,
		Timeslots:       timeslots,
		TermLabel:       termLabel,
		LockedCourseIDs: lockedIDs,
	}, nil
}

func partitionByTerm(all []courseRow, termOption string) (target, locked []courseRow, label string, err error) {
	normalized := termOption
	if normalized == "" {
		normalized = "latest"
	}

	if normalized == "all" {
		return all, nil, "todos", nil
	}

	terms := map[string]bool{}
	for _, c := range all {
		if c.Term != "" {
			terms[c.Term] = true
		}
	}
	if len(terms) == 0 {
		return all, nil, "todos", nil
	}

	sorted := make([]string, 0, len(terms))
	for t := range terms {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	targetTerm := normalized
	if normalized == "latest" {
		targetTerm = sorted[len(sorted)-1]
	} else if !terms[normalized] {
		return nil, nil, "", fmt.Errorf("el período %q no existe en la base de datos", normalized)
	}

	for _, c := range all {
		if c.Term == targetTerm {
			target = append(target, c)
		} else {
			locked = append(locked, c)
		}
	}
	if len(target) == 0 {
		return nil, nil, "", fmt.Errorf("no hay cursos configurados para el período %q", targetTerm)
	}
	return target, locked, targetTerm, nil
}

// LoadAssignments returns the currently stored assignments for the given
// course ids (all of them when courseIDs is nil).
func LoadAssignments(ctx context.Context, db *sqlx.DB, courseIDs []string) ([]assignmentRow, error) {
	var rows []assignmentRow
	if courseIDs != nil && len(courseIDs) == 0 {
		return rows, nil
	}
	if courseIDs == nil {
		err := sqlx.SelectContext(ctx, db, &rows,
			`SELECT course_id, room_id, timeslot_id FROM program_semester_schedule_slots`)
		return rows, err
	}
	query, args, err := sqlx.In(`SELECT course_id, room_id, timeslot_id FROM program_semester_schedule_slots WHERE course_id IN (?)`, courseIDs)
	if err != nil {
		return nil, err
	}
	query = db.Rebind(query)
	if err := sqlx.SelectContext(ctx, db, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func toCourseInputs(rows []courseRow) []scheduler.CourseInput {
	out := make([]scheduler.CourseInput, 0, len(rows))
	for _, c := range rows {
		out = append(out, scheduler.CourseInput{
			CourseID:          c.CourseID,
			TeacherID:         c.TeacherID,
			WeeklyHours:       c.WeeklyHours,
			ProgramSemesterID: c.ProgramSemesterID,
		})
	}
	return out
}

func toRoomInputs(rows []roomRow) []scheduler.RoomInput {
	out := make([]scheduler.RoomInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, scheduler.RoomInput{RoomID: r.RoomID, Capacity: r.Capacity})
	}
	return out
}

func toTimeslotInputs(rows []timeslotRow) []scheduler.TimeslotInput {
	blockByDay := map[int]int{}
	sorted := append([]timeslotRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Day != sorted[j].Day {
			return sorted[i].Day < sorted[j].Day
		}
		return sorted[i].StartMinutes < sorted[j].StartMinutes
	})

	blockIndex := map[string]int{}
	for _, s := range sorted {
		blockIndex[s.TimeslotID] = blockByDay[s.Day]
		blockByDay[s.Day]++
	}

	out := make([]scheduler.TimeslotInput, 0, len(rows))
	for _, s := range rows {
		duration := s.EndMinutes - s.StartMinutes
		if duration < 0 {
			duration = 0
		}
		out = append(out, scheduler.TimeslotInput{
			TimeslotID:      s.TimeslotID,
			Day:             s.Day,
			Block:           blockIndex[s.TimeslotID],
			StartMinutes:    s.StartMinutes,
			DurationMinutes: duration,
		})
	}
	return out
}
