package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
)

// syntheticCohort builds a synthetic cohort/teacher/room/timeslot population
// sized for a load-test style smoke run, grounded on the shape of the
// original's stress_optimizer.py request generator (N courses spread across
// a handful of teachers and program semesters, a fixed room/timeslot pool).
func syntheticCohort(numCourses, numRooms, numDays, blocksPerDay int) ([]CourseInput, []RoomInput, []TimeslotInput) {
	rng := rand.New(rand.NewSource(42))

	rooms := make([]RoomInput, 0, numRooms)
	for i := 0; i < numRooms; i++ {
		rooms = append(rooms, RoomInput{RoomID: fmt.Sprintf("room-%d", i), Capacity: 30 + rng.Intn(20)})
	}

	var slots []TimeslotInput
	id := 0
	for day := 0; day < numDays; day++ {
		start := 420
		for block := 0; block < blocksPerDay; block++ {
			id++
			slots = append(slots, TimeslotInput{
				TimeslotID:      fmt.Sprintf("slot-%d", id),
				Day:             day,
				Block:           block,
				StartMinutes:    start,
				DurationMinutes: 60,
			})
			start += 60
		}
	}

	numTeachers := numCourses/4 + 1
	numPrograms := numCourses/8 + 1
	courses := make([]CourseInput, 0, numCourses)
	for i := 0; i < numCourses; i++ {
		courses = append(courses, CourseInput{
			CourseID:          fmt.Sprintf("course-%d", i),
			TeacherID:         fmt.Sprintf("teacher-%d", i%numTeachers),
			WeeklyHours:       float64(1 + rng.Intn(4)),
			ProgramSemesterID: fmt.Sprintf("program-%d", i%numPrograms),
		})
	}
	return courses, rooms, slots
}

// BenchmarkOrchestrate measures end-to-end strategy fan-out cost on a
// moderately sized synthetic population, replacing an ad hoc timing script
// with a reproducible Go benchmark.
func BenchmarkOrchestrate(b *testing.B) {
	courses, rooms, slots := syntheticCohort(80, 10, 5, 8)
	cons := DefaultConstraints()
	opts := Options{Strategies: []Strategy{StrategyGrasp, StrategyGenetic, StrategyRelaxCP}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Orchestrate(context.Background(), courses, rooms, slots, cons, opts); err != nil {
			b.Fatalf("orchestrate: %v", err)
		}
	}
}

// BenchmarkOrchestrateParallel is the concurrent counterpart, run over the
// same population so the two numbers are directly comparable.
func BenchmarkOrchestrateParallel(b *testing.B) {
	courses, rooms, slots := syntheticCohort(80, 10, 5, 8)
	cons := DefaultConstraints()
	opts := Options{Strategies: []Strategy{StrategyGrasp, StrategyGenetic, StrategyRelaxCP}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := OrchestrateParallel(context.Background(), courses, rooms, slots, cons, opts); err != nil {
			b.Fatalf("orchestrate parallel: %v", err)
		}
	}
}
