package metricsreport

import (
	"github.com/noah-isme/timetable-core/internal/scheduler"
)

// buildConstraints derives teacher_availability/teacher_conflicts from the
// locked (other-term) courses' stored assignments, mirroring the offline
// report tool's dataset-driven constraint construction: a teacher's
// already-committed slots in other terms are blocked for the target term.
func buildConstraints(target, locked []courseRow, timeslots []scheduler.TimeslotInput, lockedAssignments []assignmentRow) scheduler.Constraints {
	slotIDs := make([]string, 0, len(timeslots))
	for _, t := range timeslots {
		slotIDs = append(slotIDs, t.TimeslotID)
	}

	lockedTeacherByCourse := map[string]string{}
	for _, c := range locked {
		lockedTeacherByCourse[c.CourseID] = c.TeacherID
	}

	teacherBlocked := map[string]map[string]bool{}
	for _, a := range lockedAssignments {
		teacherID, ok := lockedTeacherByCourse[a.CourseID]
		if !ok || teacherID == "" {
			continue
		}
		if teacherBlocked[teacherID] == nil {
			teacherBlocked[teacherID] = map[string]bool{}
		}
		teacherBlocked[teacherID][a.TimeslotID] = true
	}

	teacherAvailability := map[string]map[string]bool{}
	for _, c := range target {
		if c.TeacherID == "" {
			continue
		}
		if _, ok := teacherAvailability[c.TeacherID]; ok {
			continue
		}
		blocked := teacherBlocked[c.TeacherID]
		allowed := map[string]bool{}
		for _, id := range slotIDs {
			if !blocked[id] {
				allowed[id] = true
			}
		}
		if len(allowed) == 0 {
			for _, id := range slotIDs {
				allowed[id] = true
			}
		}
		teacherAvailability[c.TeacherID] = allowed
	}

	cons := scheduler.DefaultConstraints()
	cons.TeacherAvailability = teacherAvailability
	cons.TeacherConflicts = teacherBlocked
	cons.MaxConsecutiveBlocks = 4
	cons.MinGapMinutes = 15
	cons.ReserveBreakMinutes = 0
	cons.MaxDailyHoursPerProgram = 6
	cons.BalanceWeight = 0.3
	return cons
}
