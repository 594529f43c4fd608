package scheduler

import (
	"math/rand"
	"sort"
)

const defaultGraspRCLSize = 5

// GraspOptions tunes the randomized layer; zero values fall back to
// documented defaults.
type GraspOptions struct {
	Iterations int
	RCLSize    int
	Seed       int64
}

func (o GraspOptions) withDefaults() GraspOptions {
	if o.Iterations <= 0 {
		o.Iterations = 6
	}
	if o.RCLSize <= 0 {
		o.RCLSize = defaultGraspRCLSize
	}
	return o
}

// solveGrasp runs N randomized restarts over a restricted-candidate-list
// course order and day-diversified slot order, each refined by three local
// moves, keeping the best by score across every restart and refinement.
func solveGrasp(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, opts GraspOptions) *SolveResult {
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = deterministicSeed(len(courses), len(slots), len(rooms))
	}
	rng := rand.New(rand.NewSource(seed))

	var best *SolveResult
	for i := 0; i < opts.Iterations; i++ {
		courseOrder := randomizedCourseOrder(courses, rng, opts.RCLSize)
		slotOrder := randomizedSlotOrder(slots, rng)

		candidate := solvePartialGreedy(courseOrder, rooms, slotOrder, cons)
		candidate = refineLocally(candidate, courses, rooms, courseOrder, slotOrder, cons)

		best = selectBest(best, candidate)
	}
	if best != nil {
		best.Diagnostics.Messages = append(best.Diagnostics.Messages, "GRASP: mejor de múltiples reinicios aleatorios")
	}
	return best
}

// randomizedCourseOrder builds a restricted-candidate-list order: courses
// are sorted by (-weekly_hours, program_semester_id, teacher_id), then an
// RCL of the given size is repeatedly sampled from without replacement.
func randomizedCourseOrder(courses []CourseInput, rng *rand.Rand, rclSizeOpt int) []CourseInput {
	pool := make([]CourseInput, len(courses))
	copy(pool, courses)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].WeeklyHours != pool[j].WeeklyHours {
			return pool[i].WeeklyHours > pool[j].WeeklyHours
		}
		if pool[i].ProgramSemesterID != pool[j].ProgramSemesterID {
			return pool[i].ProgramSemesterID < pool[j].ProgramSemesterID
		}
		return pool[i].TeacherID < pool[j].TeacherID
	})

	out := make([]CourseInput, 0, len(pool))
	for len(pool) > 0 {
		rclSize := rclSizeOpt
		if rclSize <= 0 {
			rclSize = defaultGraspRCLSize
		}
		if rclSize > len(pool) {
			rclSize = len(pool)
		}
		pick := rng.Intn(rclSize)
		out = append(out, pool[pick])
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}

// randomizedSlotOrder shuffles day order, then sorts each day's slots by
// block with a small random jitter so ties break unpredictably.
func randomizedSlotOrder(slots []TimeslotInput, rng *rand.Rand) []TimeslotInput {
	byDay := map[int][]TimeslotInput{}
	var days []int
	for _, s := range slots {
		if _, ok := byDay[s.Day]; !ok {
			days = append(days, s.Day)
		}
		byDay[s.Day] = append(byDay[s.Day], s)
	}
	rng.Shuffle(len(days), func(i, j int) { days[i], days[j] = days[j], days[i] })

	out := make([]TimeslotInput, 0, len(slots))
	for _, d := range days {
		daySlots := append([]TimeslotInput(nil), byDay[d]...)
		noise := make([]float64, len(daySlots))
		for i := range noise {
			noise[i] = rng.Float64()
		}
		sort.Slice(daySlots, func(i, j int) bool {
			ki := float64(daySlots[i].Block) + noise[i]
			kj := float64(daySlots[j].Block) + noise[j]
			return ki < kj
		})
		out = append(out, daySlots...)
	}
	return out
}

// refineLocally applies three local-search moves and returns the best of
// the base candidate plus its three refinements.
func refineLocally(base *SolveResult, courses []CourseInput, rooms []RoomInput, courseOrder []CourseInput, slotOrder []TimeslotInput, cons Constraints) *SolveResult {
	teacherLoad := loadByTeacher(courses, base)
	byTeacherLoad := make([]CourseInput, len(courseOrder))
	copy(byTeacherLoad, courseOrder)
	sort.SliceStable(byTeacherLoad, func(i, j int) bool {
		return teacherLoad[byTeacherLoad[i].TeacherID] < teacherLoad[byTeacherLoad[j].TeacherID]
	})
	reprioritized := solvePartialGreedy(byTeacherLoad, rooms, slotOrder, cons)

	reversedSlots := make([]TimeslotInput, len(slotOrder))
	for i, s := range slotOrder {
		reversedSlots[len(slotOrder)-1-i] = s
	}
	reversed := solvePartialGreedy(courseOrder, rooms, reversedSlots, cons)

	frontLoaded := pushUnassignedToFront(courseOrder, base)
	pushedFront := solvePartialGreedy(frontLoaded, rooms, slotOrder, cons)

	return selectBest(base, reprioritized, reversed, pushedFront)
}

func loadByTeacher(courses []CourseInput, result *SolveResult) map[string]int {
	teacherByCourse := map[string]string{}
	for _, c := range courses {
		teacherByCourse[c.CourseID] = c.TeacherID
	}
	load := map[string]int{}
	for _, a := range result.Assignments {
		load[teacherByCourse[a.CourseID]] += a.DurationMinutes
	}
	return load
}

func pushUnassignedToFront(courses []CourseInput, result *SolveResult) []CourseInput {
	var unassigned, rest []CourseInput
	for _, c := range courses {
		if _, ok := result.Unassigned[c.CourseID]; ok {
			unassigned = append(unassigned, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(unassigned, rest...)
}

// deterministicSeed mirrors the original's fallback RNG seed when the
// caller does not provide one.
func deterministicSeed(numCourses, numSlots, numRooms int) int64 {
	return int64(numCourses)*1_000_003 + int64(numSlots)*97 + int64(numRooms)*17
}
