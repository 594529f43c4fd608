package scheduler

import "sort"

// candidateSlots returns, for one course, the timeslots that satisfy teacher
// availability, teacher conflicts and lunch blocks. Slots not yet placed
// relative to rooms/occupancy
// are filtered later by the greedy engine itself.
func candidateSlots(course CourseInput, slots []TimeslotInput, cons Constraints) []TimeslotInput {
	out := make([]TimeslotInput, 0, len(slots))
	for _, s := range slots {
		if !cons.teacherAllowed(course.TeacherID, s.TimeslotID) {
			continue
		}
		if cons.isLunch(s.Day, s.HourOfStart()) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// orderSlotsDefault sorts slots in the "natural" priority used by the
// baseline greedy pass: by day, then block, then start minute. Strategy
// layers (GRASP, genetic) build their own orderings over the same slot set.
func orderSlotsDefault(slots []TimeslotInput) []TimeslotInput {
	out := make([]TimeslotInput, len(slots))
	copy(out, slots)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].StartMinutes < out[j].StartMinutes
	})
	return out
}

// orderCoursesDefault sorts courses the "natural" way: longest weekly-hours
// requirement first, ties broken by cohort then teacher so the output is
// deterministic.
func orderCoursesDefault(courses []CourseInput) []CourseInput {
	out := make([]CourseInput, len(courses))
	copy(out, courses)
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeeklyHours != out[j].WeeklyHours {
			return out[i].WeeklyHours > out[j].WeeklyHours
		}
		if out[i].ProgramSemesterID != out[j].ProgramSemesterID {
			return out[i].ProgramSemesterID < out[j].ProgramSemesterID
		}
		return out[i].TeacherID < out[j].TeacherID
	})
	return out
}

// prioritizeBalancedSlots diversifies slot order across days when jornadas
// (shift descriptors) are present, grounded on the original's
// _prioritize_balanced_slots: group by day, then interleave groups round
// robin instead of exhausting one day before moving to the next.
func prioritizeBalancedSlots(slots []TimeslotInput, cons Constraints) []TimeslotInput {
	if len(cons.Jornadas) == 0 {
		return orderSlotsDefault(slots)
	}

	byDay := map[int][]TimeslotInput{}
	var days []int
	for _, s := range orderSlotsDefault(slots) {
		if _, ok := byDay[s.Day]; !ok {
			days = append(days, s.Day)
		}
		byDay[s.Day] = append(byDay[s.Day], s)
	}
	sort.Ints(days)

	out := make([]TimeslotInput, 0, len(slots))
	for i := 0; ; i++ {
		added := false
		for _, d := range days {
			if i < len(byDay[d]) {
				out = append(out, byDay[d][i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out
}

// ConstraintsFromLocked builds a Constraints value from already-persisted
// assignments of other terms, the way the offline metrics report derives
// teacher_conflicts from locked schedules before running a fresh solve
// (original_source/backend/scripts/scheduler_metrics_report.py,
// _build_constraints). Only TeacherConflicts is extended; RoomAllowed is
// left as it is in base.
func ConstraintsFromLocked(locked []AssignmentResult, teacherByCourse map[string]string, base Constraints) Constraints {
	out := base
	if out.TeacherConflicts == nil {
		out.TeacherConflicts = map[string]map[string]bool{}
	} else {
		clone := map[string]map[string]bool{}
		for k, v := range out.TeacherConflicts {
			inner := map[string]bool{}
			for kk, vv := range v {
				inner[kk] = vv
			}
			clone[k] = inner
		}
		out.TeacherConflicts = clone
	}

	for _, a := range locked {
		teacherID, ok := teacherByCourse[a.CourseID]
		if !ok || teacherID == "" {
			continue
		}
		if out.TeacherConflicts[teacherID] == nil {
			out.TeacherConflicts[teacherID] = map[string]bool{}
		}
		out.TeacherConflicts[teacherID][a.TimeslotID] = true
	}
	return out
}
