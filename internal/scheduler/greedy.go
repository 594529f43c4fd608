package scheduler

import "sort"

// interval is a half-open minute range [start, end).
type interval struct {
	start, end int
}

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// occupancy tracks, per group key (room id, teacher id or cohort id) and per
// timeslot, the intervals already claimed on that timeslot.
type occupancy map[string]map[string][]interval

func (o occupancy) free(groupID, slotID string, want interval) bool {
	for _, taken := range o[groupID][slotID] {
		if taken.overlaps(want) {
			return false
		}
	}
	return true
}

func (o occupancy) claim(groupID, slotID string, iv interval) {
	if o[groupID] == nil {
		o[groupID] = map[string][]interval{}
	}
	o[groupID][slotID] = append(o[groupID][slotID], iv)
}

// cohortRun tracks the adjacency chain state for one (cohort, day) pair.
type cohortRun struct {
	lastEnd   int
	lastSlot  string
	runLength int
}

// teacherDaySlot records one placed (start,end) for gap enforcement.
type teacherDaySlot struct {
	start, end int
}

// greedyState is the mutable working set the partial greedy pass builds up
// while walking an ordered course list against an ordered slot list.
type greedyState struct {
	cons  Constraints
	rooms []RoomInput

	roomOcc    occupancy
	teacherOcc occupancy
	cohortOcc  occupancy

	cohortDayLoad map[string]map[int]int          // cohort -> day -> minutes
	cohortRuns    map[string]map[int]*cohortRun    // cohort -> day -> run state
	teacherDay    map[string]map[int][]teacherDaySlot // teacher -> day -> placed slots

	assignments []AssignmentResult
	unassigned  map[string]int
	causes      map[string][]string
}

func newGreedyState(cons Constraints, rooms []RoomInput) *greedyState {
	return &greedyState{
		cons:          cons,
		rooms:         rooms,
		roomOcc:       occupancy{},
		teacherOcc:    occupancy{},
		cohortOcc:     occupancy{},
		cohortDayLoad: map[string]map[int]int{},
		cohortRuns:    map[string]map[int]*cohortRun{},
		teacherDay:    map[string]map[int][]teacherDaySlot{},
		unassigned:    map[string]int{},
		causes:        map[string][]string{},
	}
}

func (g *greedyState) addCause(courseID, cause string) {
	for _, c := range g.causes[courseID] {
		if c == cause {
			return
		}
	}
	g.causes[courseID] = append(g.causes[courseID], cause)
}

func (g *greedyState) dailyLoad(cohort string, day int) int {
	if g.cohortDayLoad[cohort] == nil {
		return 0
	}
	return g.cohortDayLoad[cohort][day]
}

func (g *greedyState) addDailyLoad(cohort string, day, minutes int) {
	if g.cohortDayLoad[cohort] == nil {
		g.cohortDayLoad[cohort] = map[int]int{}
	}
	g.cohortDayLoad[cohort][day] += minutes
}

func (g *greedyState) run(cohort string, day int) *cohortRun {
	if g.cohortRuns[cohort] == nil {
		g.cohortRuns[cohort] = map[int]*cohortRun{}
	}
	r, ok := g.cohortRuns[cohort][day]
	if !ok {
		r = &cohortRun{}
		g.cohortRuns[cohort][day] = r
	}
	return r
}

func (g *greedyState) teacherGapOK(teacherID string, day int, candidate teacherDaySlot) bool {
	gap := g.cons.MinGapMinutes
	if blockGap := g.cons.MinGapBlocks * (candidate.end - candidate.start); blockGap > gap {
		gap = blockGap
	}
	if gap <= 0 {
		return true
	}
	for _, placed := range g.teacherDay[teacherID][day] {
		if candidate.start >= placed.end {
			if candidate.start-placed.end < gap {
				return false
			}
		} else if placed.start >= candidate.end {
			if placed.start-candidate.end < gap {
				return false
			}
		} else {
			return false // overlap
		}
	}
	return true
}

func (g *greedyState) placeTeacherSlot(teacherID string, day int, s teacherDaySlot) {
	if g.teacherDay[teacherID] == nil {
		g.teacherDay[teacherID] = map[int][]teacherDaySlot{}
	}
	g.teacherDay[teacherID][day] = append(g.teacherDay[teacherID][day], s)
}

// candidateRoom returns the lowest-id room allowed for this slot with a free
// interval, or "" if none qualifies.
func (g *greedyState) candidateRoom(slotID string, want interval) string {
	ids := make([]string, 0, len(g.rooms))
	for _, r := range g.rooms {
		if !g.cons.roomAllowed(r.RoomID, slotID) {
			continue
		}
		if !g.roomOcc.free(r.RoomID, slotID, want) {
			continue
		}
		ids = append(ids, r.RoomID)
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Strings(ids)
	return ids[0]
}

// solvePartialGreedy is the deterministic packer: it consumes an ordered
// course list and an ordered slot list and never mutates either; all working
// state lives in a greedyState local to this call.
func solvePartialGreedy(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints) *SolveResult {
	g := newGreedyState(cons, rooms)

	for _, course := range courses {
		remaining := course.RequiredMinutes()
		if remaining <= 0 {
			continue
		}

		candidates := candidateSlots(course, slots, cons)
		if len(candidates) == 0 {
			g.addCause(course.CourseID, "no available slots")
		}

		for _, slot := range candidates {
			if remaining <= 0 {
				break
			}

			if !cons.teacherAllowed(course.TeacherID, slot.TimeslotID) {
				g.addCause(course.CourseID, "teacher blocked on all candidates")
				continue
			}

			if g.dailyLoad(course.ProgramSemesterID, slot.Day) >= cons.MaxDailyHoursPerProgram*60 {
				g.addCause(course.CourseID, "cohort capacity full")
				continue
			}

			full := interval{start: 0, end: slot.DurationMinutes}

			if !g.cohortOcc.free(course.ProgramSemesterID, slot.TimeslotID, full) {
				continue
			}
			if !g.teacherOcc.free(course.TeacherID, slot.TimeslotID, full) {
				continue
			}

			run := g.run(course.ProgramSemesterID, slot.Day)

			absStart := slot.StartMinutes
			contiguous := run.runLength > 0 && run.lastEnd == absStart

			duration := slot.DurationMinutes
			if contiguous && run.runLength >= cons.MaxConsecutiveBlocks {
				duration -= cons.ReserveBreakMinutes
				if duration <= 0 {
					continue
				}
			}
			if duration > remaining {
				duration = remaining
			}
			want := interval{start: 0, end: duration}

			roomID := g.candidateRoom(slot.TimeslotID, want)
			if roomID == "" {
				g.addCause(course.CourseID, "room capacity full")
				continue
			}

			teacherCandidate := teacherDaySlot{start: absStart, end: absStart + duration}
			if !g.teacherGapOK(course.TeacherID, slot.Day, teacherCandidate) {
				continue
			}

			g.roomOcc.claim(roomID, slot.TimeslotID, want)
			g.teacherOcc.claim(course.TeacherID, slot.TimeslotID, want)
			g.cohortOcc.claim(course.ProgramSemesterID, slot.TimeslotID, want)
			g.addDailyLoad(course.ProgramSemesterID, slot.Day, duration)
			g.placeTeacherSlot(course.TeacherID, slot.Day, teacherCandidate)

			if contiguous {
				if run.runLength >= cons.MaxConsecutiveBlocks {
					run.runLength = 1
				} else {
					run.runLength++
				}
			} else {
				run.runLength = 1
			}
			run.lastEnd = absStart + duration
			run.lastSlot = slot.TimeslotID

			g.assignments = append(g.assignments, AssignmentResult{
				CourseID:           course.CourseID,
				RoomID:             roomID,
				TimeslotID:         slot.TimeslotID,
				StartOffsetMinutes: 0,
				DurationMinutes:    duration,
			})

			remaining -= duration
		}

		if remaining > 0 {
			g.unassigned[course.CourseID] = remaining
		}
	}

	return buildResult(courses, slots, g.assignments, g.unassigned, g.causes, cons, nil)
}

// sortAssignments orders the final vector deterministically: grouped by
// course_id, then by (day, block, start_offset) ascending.
func sortAssignments(assignments []AssignmentResult, slotByID map[string]TimeslotInput) []AssignmentResult {
	out := make([]AssignmentResult, len(assignments))
	copy(out, assignments)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseID != out[j].CourseID {
			return out[i].CourseID < out[j].CourseID
		}
		si, sj := slotByID[out[i].TimeslotID], slotByID[out[j].TimeslotID]
		if si.Day != sj.Day {
			return si.Day < sj.Day
		}
		if si.Block != sj.Block {
			return si.Block < sj.Block
		}
		return out[i].StartOffsetMinutes < out[j].StartOffsetMinutes
	})
	return out
}
