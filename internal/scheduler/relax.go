package scheduler

import "sort"

// ExactPassOptions tunes the optional bounded-backtracking exact pass.
type ExactPassOptions struct {
	MaxCandidatesPerCourse int
	TimeBudgetSeconds      float64
	Disabled               bool
}

func (o ExactPassOptions) withDefaults() ExactPassOptions {
	if o.MaxCandidatesPerCourse <= 0 {
		o.MaxCandidatesPerCourse = 5
	}
	if o.TimeBudgetSeconds <= 0 {
		o.TimeBudgetSeconds = 5
	}
	return o
}

// solveRelaxedCP relaxes the hard limits, solves, repairs under the original
// constraints, optionally augment with the exact pass, and return the best
// of the three by score.
func solveRelaxedCP(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, exactOpts ExactPassOptions) *SolveResult {
	relaxed := relaxConstraints(cons)
	slotOrder := prioritizeBalancedSlots(slots, cons)

	relaxedResult := solvePartialGreedy(orderCoursesDefault(courses), rooms, slotOrder, relaxed)

	repaired := repairUnderOriginalConstraints(courses, rooms, slots, cons, relaxedResult)

	best := selectBest(relaxedResult, repaired)

	if !exactOpts.Disabled {
		augmented := runExactPass(courses, rooms, slots, cons, repaired, exactOpts.withDefaults())
		best = selectBest(best, augmented)
	}

	if best != nil {
		best.Diagnostics.Messages = append(best.Diagnostics.Messages, "Relajación/reparación aplicada")
	}
	return best
}

// relaxConstraints softens the hard limits by one notch.
func relaxConstraints(cons Constraints) Constraints {
	relaxed := cons
	relaxed.MaxConsecutiveBlocks = cons.MaxConsecutiveBlocks + 1
	relaxed.MinGapMinutes = cons.MinGapMinutes - 10
	if relaxed.MinGapMinutes < 0 {
		relaxed.MinGapMinutes = 0
	}
	relaxed.ReserveBreakMinutes = cons.ReserveBreakMinutes / 2
	relaxed.MaxDailyHoursPerProgram = cons.MaxDailyHoursPerProgram + 2
	relaxed.BalanceWeight = cons.BalanceWeight * 0.5
	return relaxed
}

// repairUnderOriginalConstraints re-solves under the original constraints,
// preserving the "what worked" prefix: courses are reordered by assigned
// minutes descending, and slots are reordered by their first-use position
// in the relaxed result.
func repairUnderOriginalConstraints(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, relaxedResult *SolveResult) *SolveResult {
	assignedMinutes := map[string]int{}
	for _, a := range relaxedResult.Assignments {
		assignedMinutes[a.CourseID] += a.DurationMinutes
	}

	courseOrder := make([]CourseInput, len(courses))
	copy(courseOrder, courses)
	sort.SliceStable(courseOrder, func(i, j int) bool {
		return assignedMinutes[courseOrder[i].CourseID] > assignedMinutes[courseOrder[j].CourseID]
	})

	slotOrder := orderSlotsByFirstUse(slots, relaxedResult)

	return solvePartialGreedy(courseOrder, rooms, slotOrder, cons)
}

// orderSlotsByFirstUse puts slots used earliest in the relaxed result first,
// then appends any unused slots in their natural order.
func orderSlotsByFirstUse(slots []TimeslotInput, relaxedResult *SolveResult) []TimeslotInput {
	firstUse := map[string]int{}
	for i, a := range relaxedResult.Assignments {
		if _, seen := firstUse[a.TimeslotID]; !seen {
			firstUse[a.TimeslotID] = i
		}
	}

	out := make([]TimeslotInput, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		ui, usedI := firstUse[out[i].TimeslotID]
		uj, usedJ := firstUse[out[j].TimeslotID]
		if usedI && usedJ {
			return ui < uj
		}
		if usedI != usedJ {
			return usedI
		}
		return false
	})
	return out
}
