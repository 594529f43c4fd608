package scheduler

import (
	"math/rand"
	"sort"
)

// GeneticOptions tunes the population-based layer; zero values fall back to
// documented defaults.
type GeneticOptions struct {
	PopulationSize int
	Generations    int
	Seed           int64
}

func (o GeneticOptions) withDefaults() GeneticOptions {
	if o.PopulationSize <= 0 {
		o.PopulationSize = 8
	}
	if o.Generations <= 0 {
		o.Generations = 6
	}
	return o
}

// chromosome is an (course_order, slot_order) pair, expressed as index
// permutations over the caller's course/slot vectors so crossover and
// mutation stay index-based and cheap to copy.
type chromosome struct {
	courseOrder []int
	slotOrder   []int
}

// solveGenetic evolves a population of chromosomes seeded from
// heuristic orderings plus random fill, evolved by tournament selection,
// order crossover and adaptive swap mutation, evaluated each generation by
// running the shared greedy primitive.
func solveGenetic(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, opts GeneticOptions) *SolveResult {
	opts = opts.withDefaults()
	seed := opts.Seed
	if seed == 0 {
		seed = deterministicSeed(len(courses), len(slots), len(rooms))
	}
	rng := rand.New(rand.NewSource(seed))

	population := seedPopulation(courses, slots, opts.PopulationSize, rng)
	eliteCount := opts.PopulationSize / 4
	if eliteCount < 1 {
		eliteCount = 1
	}

	mutationRate := 0.2
	var bestScore score
	var best *SolveResult
	stagnant := 0

	for gen := 0; gen < opts.Generations; gen++ {
		evals := make([]evalEntry, len(population))
		for i, c := range population {
			result := evaluateChromosome(c, courses, rooms, slots, cons)
			evals[i] = evalEntry{chrom: c, result: result}
		}
		sort.Slice(evals, func(i, j int) bool {
			return evals[i].result.score().better(evals[j].result.score())
		})

		improved := best == nil || evals[0].result.score().better(bestScore)
		if improved {
			best = evals[0].result
			bestScore = best.score()
			stagnant = 0
		} else {
			stagnant++
		}

		if stagnant >= 2 {
			mutationRate = minFloat(mutationRate*1.3, 0.6)
		} else if improved {
			mutationRate = maxFloat(mutationRate*0.85, 0.1)
		}

		if gen == opts.Generations-1 {
			break
		}

		next := make([]chromosome, 0, len(population))
		for i := 0; i < eliteCount && i < len(evals); i++ {
			next = append(next, evals[i].chrom)
		}
		pool := make([]chromosome, len(evals))
		for i, e := range evals {
			pool[i] = e.chrom
		}
		for len(next) < len(population) {
			p1 := selectParent(pool, evals, rng)
			p2 := selectParent(pool, evals, rng)
			child := crossover(p1, p2, rng)
			mutate(&child, mutationRate, rng)
			next = append(next, child)
		}
		population = next
	}

	if best != nil {
		best.Diagnostics.Messages = append(best.Diagnostics.Messages, "Genético: mejor cromosoma tras evolución")
	}
	return best
}

func evaluateChromosome(c chromosome, courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints) *SolveResult {
	orderedCourses := make([]CourseInput, len(c.courseOrder))
	for i, idx := range c.courseOrder {
		orderedCourses[i] = courses[idx]
	}
	orderedSlots := make([]TimeslotInput, len(c.slotOrder))
	for i, idx := range c.slotOrder {
		orderedSlots[i] = slots[idx]
	}
	return solvePartialGreedy(orderedCourses, rooms, orderedSlots, cons)
}

// seedPopulation builds the initial generation from several heuristic
// course/slot orderings crossed with each other, then fills any remaining
// slots with random permutations.
func seedPopulation(courses []CourseInput, slots []TimeslotInput, size int, rng *rand.Rand) []chromosome {
	courseHeuristics := heuristicCourseOrders(courses)
	slotHeuristics := heuristicSlotOrders(slots)

	var population []chromosome
	for _, co := range courseHeuristics {
		for _, so := range slotHeuristics {
			population = append(population, chromosome{courseOrder: co, slotOrder: so})
			if len(population) >= size {
				return population[:size]
			}
		}
	}

	for len(population) < size {
		population = append(population, chromosome{
			courseOrder: randomPermutation(len(courses), rng),
			slotOrder:   randomPermutation(len(slots), rng),
		})
	}
	return population
}

func heuristicCourseOrders(courses []CourseInput) [][]int {
	natural := identityPermutation(len(courses))

	byHours := identityPermutation(len(courses))
	sort.SliceStable(byHours, func(i, j int) bool {
		return courses[byHours[i]].WeeklyHours > courses[byHours[j]].WeeklyHours
	})

	byTeacher := identityPermutation(len(courses))
	sort.SliceStable(byTeacher, func(i, j int) bool {
		a, b := courses[byTeacher[i]], courses[byTeacher[j]]
		if a.TeacherID != b.TeacherID {
			return a.TeacherID < b.TeacherID
		}
		return a.WeeklyHours > b.WeeklyHours
	})

	alternating := reversedPermutation(byHours)

	return [][]int{natural, byHours, byTeacher, alternating}
}

func heuristicSlotOrders(slots []TimeslotInput) [][]int {
	natural := identityPermutation(len(slots))

	reversed := reversedPermutation(natural)

	byDayBlock := identityPermutation(len(slots))
	sort.SliceStable(byDayBlock, func(i, j int) bool {
		a, b := slots[byDayBlock[i]], slots[byDayBlock[j]]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Block < b.Block
	})

	return [][]int{natural, reversed, byDayBlock}
}

func identityPermutation(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reversedPermutation(p []int) []int {
	out := make([]int, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

func randomPermutation(n int, rng *rand.Rand) []int {
	out := identityPermutation(n)
	rng.Shuffle(n, func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// evalEntry pairs a chromosome with its evaluated SolveResult for one
// generation's selection step.
type evalEntry struct {
	chrom  chromosome
	result *SolveResult
}

// selectParent runs a tournament of 3 over the evaluated population.
func selectParent(pool []chromosome, evals []evalEntry, rng *rand.Rand) chromosome {
	best := -1
	for i := 0; i < 3; i++ {
		idx := rng.Intn(len(pool))
		if best == -1 || evals[idx].result.score().better(evals[best].result.score()) {
			best = idx
		}
	}
	return pool[best]
}

// crossover applies order crossover (OX) independently to the course-order
// and slot-order permutations.
func crossover(p1, p2 chromosome, rng *rand.Rand) chromosome {
	return chromosome{
		courseOrder: orderCrossover(p1.courseOrder, p2.courseOrder, rng),
		slotOrder:   orderCrossover(p1.slotOrder, p2.slotOrder, rng),
	}
}

func orderCrossover(a, b []int, rng *rand.Rand) []int {
	n := len(a)
	if n == 0 {
		return nil
	}
	i, j := rng.Intn(n), rng.Intn(n)
	if i > j {
		i, j = j, i
	}

	child := make([]int, n)
	for k := range child {
		child[k] = -1
	}
	used := make(map[int]bool, n)
	for k := i; k <= j; k++ {
		child[k] = a[k]
		used[a[k]] = true
	}

	pos := (j + 1) % n
	for _, v := range b {
		if used[v] {
			continue
		}
		child[pos] = v
		used[v] = true
		pos = (pos + 1) % n
	}
	return child
}

// mutate applies a swap mutation to both permutations, each independently
// gated by rate.
func mutate(c *chromosome, rate float64, rng *rand.Rand) {
	if rng.Float64() < rate && len(c.courseOrder) > 1 {
		swapRandom(c.courseOrder, rng)
	}
	if rng.Float64() < rate && len(c.slotOrder) > 1 {
		swapRandom(c.slotOrder, rng)
	}
}

func swapRandom(p []int, rng *rand.Rand) {
	i, j := rng.Intn(len(p)), rng.Intn(len(p))
	p[i], p[j] = p[j], p[i]
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
