package scheduler

import (
	"sort"
	"time"
)

// exactCandidate is one (room, timeslot) option for a pending course, along
// with the minutes it could realistically recover given the repaired
// result's existing occupancy.
type exactCandidate struct {
	courseID   string
	roomID     string
	timeslotID string
	minutes    int
}

// runExactPass is an optional "CP-SAT-class" finishing stage. No CP-SAT
// binding exists anywhere in this module's dependency surface,
// so the formulation — boolean vars per (course, room, timeslot), at most
// one assignment per course, at most one per (room, timeslot), maximize
// total pending minutes — is solved by a small bounded backtracking search
// instead of an external solver. The problem is always tiny (at most
// maxCandidatesPerCourse options per still-pending course), so exhaustive
// branch-and-bound finishes well inside the time budget.
func runExactPass(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, repaired *SolveResult, opts ExactPassOptions) *SolveResult {
	if len(repaired.Unassigned) == 0 {
		return repaired
	}

	deadline := time.Now().Add(time.Duration(opts.TimeBudgetSeconds * float64(time.Second)))

	candidatesByCourse := buildExactCandidates(courses, rooms, slots, cons, repaired, opts.MaxCandidatesPerCourse)
	if len(candidatesByCourse) == 0 {
		augmented := cloneResult(repaired)
		augmented.Diagnostics.Messages = append(augmented.Diagnostics.Messages, "Pase exacto: sin candidatos disponibles")
		return augmented
	}

	pendingCourseIDs := make([]string, 0, len(candidatesByCourse))
	for id := range candidatesByCourse {
		pendingCourseIDs = append(pendingCourseIDs, id)
	}
	sort.Strings(pendingCourseIDs)

	chosen, timedOut := exactBacktrack(pendingCourseIDs, candidatesByCourse, deadline)

	assignments := append([]AssignmentResult(nil), repaired.Assignments...)
	unassigned := map[string]int{}
	for k, v := range repaired.Unassigned {
		unassigned[k] = v
	}
	causes := map[string][]string{}
	for k, v := range repaired.Diagnostics.UnassignedCauses {
		causes[k] = append([]string(nil), v...)
	}

	for _, c := range chosen {
		assignments = append(assignments, AssignmentResult{
			CourseID:           c.courseID,
			RoomID:             c.roomID,
			TimeslotID:         c.timeslotID,
			StartOffsetMinutes: 0,
			DurationMinutes:    c.minutes,
		})
		unassigned[c.courseID] -= c.minutes
		if unassigned[c.courseID] <= 0 {
			delete(unassigned, c.courseID)
		}
	}

	msg := "Pase exacto: asignaciones adicionales incorporadas"
	if timedOut {
		msg = "Pase exacto: límite de tiempo alcanzado, se conservó la mejor solución parcial"
	}
	messages := append(append([]string(nil), repaired.Diagnostics.Messages...), msg)

	augmented := buildResult(courses, slots, assignments, unassigned, causes, cons, messages)
	augmented.PerformanceMetrics.RuntimeSeconds = repaired.PerformanceMetrics.RuntimeSeconds
	return augmented
}

// buildExactCandidates enumerates up to maxPerCourse (room, timeslot)
// options per pending course that are free given the repaired result's
// occupancy and satisfy teacher/room/lunch constraints.
func buildExactCandidates(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, repaired *SolveResult, maxPerCourse int) map[string][]exactCandidate {
	courseByID := map[string]CourseInput{}
	for _, c := range courses {
		courseByID[c.CourseID] = c
	}

	takenRoomSlot := map[string]bool{}
	takenTeacherSlot := map[string]bool{}
	takenCohortSlot := map[string]bool{}
	for _, a := range repaired.Assignments {
		course := courseByID[a.CourseID]
		takenRoomSlot[a.RoomID+"|"+a.TimeslotID] = true
		takenTeacherSlot[course.TeacherID+"|"+a.TimeslotID] = true
		takenCohortSlot[course.ProgramSemesterID+"|"+a.TimeslotID] = true
	}

	out := map[string][]exactCandidate{}
	for courseID, remaining := range repaired.Unassigned {
		course, ok := courseByID[courseID]
		if !ok || remaining <= 0 {
			continue
		}

		var perCourse []exactCandidate
		for _, s := range candidateSlots(course, slots, cons) {
			if takenTeacherSlot[course.TeacherID+"|"+s.TimeslotID] {
				continue
			}
			if takenCohortSlot[course.ProgramSemesterID+"|"+s.TimeslotID] {
				continue
			}
			for _, r := range rooms {
				if !cons.roomAllowed(r.RoomID, s.TimeslotID) {
					continue
				}
				if takenRoomSlot[r.RoomID+"|"+s.TimeslotID] {
					continue
				}
				minutes := s.DurationMinutes
				if minutes > remaining {
					minutes = remaining
				}
				perCourse = append(perCourse, exactCandidate{
					courseID:   courseID,
					roomID:     r.RoomID,
					timeslotID: s.TimeslotID,
					minutes:    minutes,
				})
				break // lowest-iteration room found is enough per slot
			}
			if len(perCourse) >= maxPerCourse {
				break
			}
		}

		if len(perCourse) > 0 {
			out[courseID] = perCourse
		}
	}
	return out
}

// exactBacktrack explores, for each pending course, "skip" or "take one of
// its candidates", maximizing total minutes recovered subject to each
// (room, timeslot) being used at most once. Returns the chosen candidates
// and whether the time budget was exhausted before the search completed.
func exactBacktrack(courseIDs []string, candidatesByCourse map[string][]exactCandidate, deadline time.Time) ([]exactCandidate, bool) {
	bestChosen := []exactCandidate{}
	bestMinutes := 0
	timedOut := false

	usedRoomSlot := map[string]bool{}
	var current []exactCandidate
	currentMinutes := 0

	var remainingUpperBound func(idx int) int
	upperBounds := make([]int, len(courseIDs)+1)
	for i := len(courseIDs) - 1; i >= 0; i-- {
		best := 0
		for _, c := range candidatesByCourse[courseIDs[i]] {
			if c.minutes > best {
				best = c.minutes
			}
		}
		upperBounds[i] = upperBounds[i+1] + best
	}
	remainingUpperBound = func(idx int) int { return upperBounds[idx] }

	var recurse func(idx int)
	recurse = func(idx int) {
		if timedOut || time.Now().After(deadline) {
			timedOut = true
			return
		}
		if idx == len(courseIDs) {
			if currentMinutes > bestMinutes {
				bestMinutes = currentMinutes
				bestChosen = append([]exactCandidate(nil), current...)
			}
			return
		}
		if currentMinutes+remainingUpperBound(idx) <= bestMinutes {
			return
		}

		// Option 1: skip this course entirely.
		recurse(idx + 1)
		if timedOut {
			return
		}

		for _, c := range candidatesByCourse[courseIDs[idx]] {
			key := c.roomID + "|" + c.timeslotID
			if usedRoomSlot[key] {
				continue
			}
			usedRoomSlot[key] = true
			current = append(current, c)
			currentMinutes += c.minutes

			recurse(idx + 1)

			currentMinutes -= c.minutes
			current = current[:len(current)-1]
			usedRoomSlot[key] = false

			if timedOut {
				return
			}
		}
	}
	recurse(0)

	if currentMinutes > bestMinutes {
		bestMinutes = currentMinutes
		bestChosen = append([]exactCandidate(nil), current...)
	}
	return bestChosen, timedOut
}

func cloneResult(r *SolveResult) *SolveResult {
	assignments := append([]AssignmentResult(nil), r.Assignments...)
	unassigned := make(map[string]int, len(r.Unassigned))
	for k, v := range r.Unassigned {
		unassigned[k] = v
	}
	causes := make(map[string][]string, len(r.Diagnostics.UnassignedCauses))
	for k, v := range r.Diagnostics.UnassignedCauses {
		causes[k] = append([]string(nil), v...)
	}
	return &SolveResult{
		Assignments:        assignments,
		Unassigned:         unassigned,
		QualityMetrics:      r.QualityMetrics,
		PerformanceMetrics:  r.PerformanceMetrics,
		Diagnostics: Diagnostics{
			Messages:         append([]string(nil), r.Diagnostics.Messages...),
			UnassignedCauses: causes,
		},
	}
}
