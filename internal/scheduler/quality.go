package scheduler

import "math"

// buildResult assembles a SolveResult from a raw assignment vector, applying
// a stable ordering and computing the quality/performance metrics. It is
// the single path every strategy funnels through so the metrics are
// computed identically everywhere.
func buildResult(courses []CourseInput, slots []TimeslotInput, assignments []AssignmentResult, unassigned map[string]int, causes map[string][]string, cons Constraints, extraMessages []string) *SolveResult {
	slotByID := make(map[string]TimeslotInput, len(slots))
	for _, s := range slots {
		slotByID[s.TimeslotID] = s
	}

	sorted := sortAssignments(assignments, slotByID)

	requiredByCourse := make(map[string]int, len(courses))
	var requestedMinutes int
	for _, c := range courses {
		requiredByCourse[c.CourseID] = c.RequiredMinutes()
		requestedMinutes += c.RequiredMinutes()
	}

	var assignedMinutes int
	usedSlots := map[string]bool{}
	cohortDayMinutes := map[string]map[int]int{}
	cohortByCourse := map[string]string{}
	for _, c := range courses {
		cohortByCourse[c.CourseID] = c.ProgramSemesterID
	}

	for _, a := range sorted {
		assignedMinutes += a.DurationMinutes
		usedSlots[a.TimeslotID] = true

		cohort := cohortByCourse[a.CourseID]
		slot, ok := slotByID[a.TimeslotID]
		if !ok {
			continue
		}
		if cohortDayMinutes[cohort] == nil {
			cohortDayMinutes[cohort] = map[int]int{}
		}
		cohortDayMinutes[cohort][slot.Day] += a.DurationMinutes
	}

	unassignedCopy := make(map[string]int, len(unassigned))
	for k, v := range unassigned {
		if v > 0 {
			unassignedCopy[k] = v
		}
	}

	quality := computeQualityMetrics(cohortDayMinutes, cons, len(usedSlots), len(slots))
	quality.TotalAssigned = len(sorted)
	quality.TotalUnassigned = sumValues(unassignedCopy)
	quality.UnassignedCount = len(unassignedCopy)

	fillRate := 0.0
	if requestedMinutes > 0 {
		fillRate = float64(assignedMinutes) / float64(requestedMinutes)
	}

	perf := PerformanceMetrics{
		RequestedCourses: len(courses),
		AssignedCourses:  countAssignedCourses(sorted),
		RequestedMinutes: requestedMinutes,
		AssignedMinutes:  assignedMinutes,
		FillRate:         fillRate,
	}

	causesCopy := make(map[string][]string, len(causes))
	for k, v := range causes {
		if _, stillUnassigned := unassignedCopy[k]; stillUnassigned {
			causesCopy[k] = append([]string(nil), v...)
		}
	}

	return &SolveResult{
		Assignments:        sorted,
		Unassigned:         unassignedCopy,
		QualityMetrics:     quality,
		PerformanceMetrics: perf,
		Diagnostics: Diagnostics{
			Messages:         append([]string(nil), extraMessages...),
			UnassignedCauses: causesCopy,
		},
	}
}

func countAssignedCourses(assignments []AssignmentResult) int {
	seen := map[string]bool{}
	for _, a := range assignments {
		seen[a.CourseID] = true
	}
	return len(seen)
}

func sumValues(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// computeQualityMetrics derives balance_score, daily_overload_count and the
// avg/max daily load figures from the per-(cohort,day) minute tallies.
func computeQualityMetrics(cohortDayMinutes map[string]map[int]int, cons Constraints, usedSlots, totalSlots int) QualityMetrics {
	var values []float64
	overloads := 0
	ceiling := cons.MaxDailyHoursPerProgram * 60

	for _, days := range cohortDayMinutes {
		for _, minutes := range days {
			values = append(values, float64(minutes))
			if ceiling > 0 && minutes > ceiling {
				overloads++
			}
		}
	}

	balance := 100.0
	var avgHours, maxHours float64
	if len(values) > 0 {
		mean := 0.0
		for _, v := range values {
			mean += v
		}
		mean /= float64(len(values))

		var variance float64
		for _, v := range values {
			d := v - mean
			variance += d * d
		}
		variance /= float64(len(values))
		stdev := math.Sqrt(variance)

		normalized := 0.0
		if mean > 0 {
			normalized = stdev / mean * 100
		}
		balance = 100 - normalized
		if balance < 0 {
			balance = 0
		}
		if balance > 100 {
			balance = 100
		}

		avgHours = mean / 60
		for _, v := range values {
			if v/60 > maxHours {
				maxHours = v / 60
			}
		}
	}

	utilization := 0.0
	if totalSlots > 0 {
		utilization = float64(usedSlots) / float64(totalSlots)
	}

	return QualityMetrics{
		BalanceScore:        balance,
		DailyOverloadCount:  overloads,
		AvgDailyLoadHours:   avgHours,
		MaxDailyLoadHours:   maxHours,
		TimeslotUtilization: utilization,
	}
}
