package scheduler

import "sort"

// solveWithRetry runs the base greedy pass and, if any course is left
// unassigned, retries up to twice with under-served teachers reordered to
// the front. The best of {initial, retry1, retry2} by score is kept.
func solveWithRetry(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints) *SolveResult {
	ordered := orderCoursesDefault(courses)
	slotOrder := prioritizeBalancedSlots(slots, cons)

	initial := solvePartialGreedy(ordered, rooms, slotOrder, cons)
	if len(initial.Unassigned) == 0 {
		return initial
	}

	best := initial
	attempted := false

	for attempt := 0; attempt < 2; attempt++ {
		underServed := underServedTeachers(courses, best)
		if len(underServed) == 0 {
			break
		}

		reordered := reorderByUnderservedTeacher(ordered, underServed)
		retry := solvePartialGreedy(reordered, rooms, slotOrder, cons)
		attempted = true

		if retry.score().better(best.score()) {
			best = retry
		}
		if len(best.Unassigned) == 0 {
			break
		}
	}

	if attempted {
		best.Diagnostics.Messages = append(best.Diagnostics.Messages, "Se aplicaron intentos adicionales")
	}
	return best
}

// underServedTeachers returns the set of teachers whose observed load in
// result is below the mean teacher load, restricted to teachers who still
// own an unassigned course.
func underServedTeachers(courses []CourseInput, result *SolveResult) map[string]bool {
	teacherByCourse := map[string]string{}
	for _, c := range courses {
		teacherByCourse[c.CourseID] = c.TeacherID
	}

	loadByTeacher := map[string]int{}
	for _, a := range result.Assignments {
		loadByTeacher[teacherByCourse[a.CourseID]] += a.DurationMinutes
	}

	var total, count int
	for _, minutes := range loadByTeacher {
		total += minutes
		count++
	}
	mean := 0.0
	if count > 0 {
		mean = float64(total) / float64(count)
	}

	underServed := map[string]bool{}
	for courseID := range result.Unassigned {
		teacherID := teacherByCourse[courseID]
		if float64(loadByTeacher[teacherID]) < mean {
			underServed[teacherID] = true
		}
	}
	return underServed
}

// reorderByUnderservedTeacher stable-sorts courses so that those whose
// teacher is under-served come first, preserving the existing relative
// order otherwise.
func reorderByUnderservedTeacher(courses []CourseInput, underServed map[string]bool) []CourseInput {
	out := make([]CourseInput, len(courses))
	copy(out, courses)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := underServed[out[i].TeacherID], underServed[out[j].TeacherID]
		if pi != pj {
			return pi
		}
		return false
	})
	return out
}
