package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Strategy names a selectable solving approach beyond the always-run
// greedy+retry baseline.
type Strategy string

const (
	StrategyGrasp    Strategy = "grasp"
	StrategyGenetic  Strategy = "genetic"
	StrategyRelaxCP  Strategy = "relax_cp"
)

// Options configures one call to Solve/Orchestrate.
type Options struct {
	Strategies []Strategy
	Grasp      GraspOptions
	Genetic    GeneticOptions
	ExactPass  ExactPassOptions
}

// Solve is the baseline entry point: it always runs greedy+retry and
// returns that result directly. Use Orchestrate when additional strategies
// should be tried and compared.
func Solve(_ context.Context, courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints) (*SolveResult, error) {
	if err := validateInputs(courses, rooms, slots); err != nil {
		return nil, err
	}

	start := time.Now()
	result := solveWithRetry(courses, rooms, slots, cons)
	result.PerformanceMetrics.RuntimeSeconds = time.Since(start).Seconds()
	return result, nil
}

// Orchestrate runs greedy+retry plus every strategy the caller selected,
// sequentially, and returns the best by score — the path for callers that
// want maximum quality over raw speed.
func Orchestrate(ctx context.Context, courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, opts Options) (*SolveResult, error) {
	if err := validateInputs(courses, rooms, slots); err != nil {
		return nil, err
	}

	results := []*SolveResult{runTimed(func() *SolveResult {
		return solveWithRetry(courses, rooms, slots, cons)
	})}

	for _, strategy := range opts.Strategies {
		results = append(results, runStrategy(strategy, courses, rooms, slots, cons, opts))
	}

	best := selectBest(results...)
	best.Diagnostics.Messages = mergeMessages(results, best)
	return best, nil
}

// OrchestrateParallel is the same as Orchestrate but runs every selected
// strategy concurrently, each over its own copy of the course and slot
// slices; rooms and constraints are shared, and no strategy writes to them.
func OrchestrateParallel(ctx context.Context, courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, opts Options) (*SolveResult, error) {
	if err := validateInputs(courses, rooms, slots); err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make([]*SolveResult, len(opts.Strategies)+1)

	g.Go(func() error {
		results[0] = runTimed(func() *SolveResult {
			return solveWithRetry(cloneCourses(courses), rooms, cloneSlots(slots), cons)
		})
		return nil
	})

	for i, strategy := range opts.Strategies {
		i, strategy := i, strategy
		g.Go(func() error {
			results[i+1] = runStrategy(strategy, cloneCourses(courses), rooms, cloneSlots(slots), cons, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := selectBest(results...)
	best.Diagnostics.Messages = mergeMessages(results, best)
	return best, nil
}

func runStrategy(strategy Strategy, courses []CourseInput, rooms []RoomInput, slots []TimeslotInput, cons Constraints, opts Options) *SolveResult {
	switch strategy {
	case StrategyGrasp:
		return runTimed(func() *SolveResult { return solveGrasp(courses, rooms, slots, cons, opts.Grasp) })
	case StrategyGenetic:
		return runTimed(func() *SolveResult { return solveGenetic(courses, rooms, slots, cons, opts.Genetic) })
	case StrategyRelaxCP:
		return runTimed(func() *SolveResult { return solveRelaxedCP(courses, rooms, slots, cons, opts.ExactPass) })
	default:
		return nil
	}
}

func runTimed(f func() *SolveResult) *SolveResult {
	start := time.Now()
	result := f()
	if result != nil {
		result.PerformanceMetrics.RuntimeSeconds = time.Since(start).Seconds()
	}
	return result
}

func mergeMessages(results []*SolveResult, best *SolveResult) []string {
	seen := map[string]bool{}
	var merged []string
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, m := range r.Diagnostics.Messages {
			if seen[m] {
				continue
			}
			seen[m] = true
			merged = append(merged, m)
		}
	}
	_ = best
	return merged
}

func cloneCourses(courses []CourseInput) []CourseInput {
	return append([]CourseInput(nil), courses...)
}

func cloneSlots(slots []TimeslotInput) []TimeslotInput {
	return append([]TimeslotInput(nil), slots...)
}
