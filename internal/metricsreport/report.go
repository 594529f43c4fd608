package metricsreport

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-core/internal/scheduler"
)

type conflictCounts struct {
	Teacher int
	Room    int
	Total   int
}

func countConflicts(assignments []assignmentRow, teacherByCourse map[string]string) conflictCounts {
	teacherBucket := map[string]int{}
	roomBucket := map[string]int{}
	for _, a := range assignments {
		if teacherID, ok := teacherByCourse[a.CourseID]; ok && teacherID != "" {
			teacherBucket[teacherID+"|"+a.TimeslotID]++
		}
		roomBucket[a.RoomID+"|"+a.TimeslotID]++
	}

	excess := func(bucket map[string]int) int {
		total := 0
		for _, count := range bucket {
			if count > 1 {
				total += count - 1
			}
		}
		return total
	}

	teacherConflicts := excess(teacherBucket)
	roomConflicts := excess(roomBucket)
	return conflictCounts{Teacher: teacherConflicts, Room: roomConflicts, Total: teacherConflicts + roomConflicts}
}

func durationStats(durations []float64) (avg, stdDev float64) {
	if len(durations) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	avg = sum / float64(len(durations))
	if len(durations) == 1 {
		return avg, 0
	}
	variance := 0.0
	for _, d := range durations {
		variance += (d - avg) * (d - avg)
	}
	variance /= float64(len(durations) - 1)
	return avg, math.Sqrt(variance)
}

// Report holds the measurement outcome in structured form, before it is
// rendered to text.
type Report struct {
	Label              string
	Runs               int
	Durations          []float64
	CourseCount        int
	RoomCount          int
	TimeslotCount      int
	LockedCourseCount  int
	TermLabel          string
	BaselineConflicts  conflictCounts
	FinalConflicts     conflictCounts
	UnassignedCourses  int
	UnassignedMinutes  int
}

// CR is the percentage of pre-existing conflicts the optimizer resolved.
func (r Report) CR() float64 {
	before := r.BaselineConflicts.Total
	after := r.FinalConflicts.Total
	if before == 0 {
		if after == 0 {
			return 100.0
		}
		return 0.0
	}
	cr := (float64(before-after) / float64(before)) * 100
	if cr < 0 {
		return 0
	}
	if cr > 100 {
		return 100
	}
	return cr
}

// Tg returns the mean and standard deviation of the measured generation
// times, in seconds.
func (r Report) Tg() (avg, stdDev float64) {
	return durationStats(r.Durations)
}

// Text renders the report in the same fixed layout the offline Python tool
// used to write to its append-only text log.
func (r Report) Text() string {
	avg, stdDev := r.Tg()
	samples := make([]string, 0, len(r.Durations))
	for _, d := range r.Durations {
		samples = append(samples, fmt.Sprintf("%.3f", d))
	}
	sampleText := "n/a"
	if len(samples) > 0 {
		sampleText = strings.Join(samples, ", ")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	lines := []string{
		strings.Repeat("=", 72),
		fmt.Sprintf("Reporte de metricas del optimizador - %s", timestamp),
		fmt.Sprintf("Escenario analizado: %s", r.Label),
		fmt.Sprintf("Periodo considerado: %s", r.TermLabel),
		fmt.Sprintf("Corridas realizadas: %d", r.Runs),
		fmt.Sprintf("Contexto del dataset: cursos=%d salas=%d bloques=%d cursos_bloqueados=%d",
			r.CourseCount, r.RoomCount, r.TimeslotCount, r.LockedCourseCount),
		"Descripciones clave:",
		" - Tg (tiempo medio de generacion): promedio en segundos de cada ejecucion. Objetivo sugerido <= 600 s.",
		" - CR (porcentaje de choques resueltos): ((choques iniciales - choques finales) / choques iniciales) * 100.",
		" - Choque docente/sala: asignaciones simultaneas del mismo docente o sala en un bloque.",
		" - Cursos sin asignar: cursos con minutos pendientes luego de optimizar.",
		fmt.Sprintf("Muestras Tg (s): %s", sampleText),
		fmt.Sprintf("Tg promedio: %.3f s", avg),
		fmt.Sprintf("Tg desviacion estandar: %.3f s", stdDev),
		fmt.Sprintf("Choques antes (base manual): total=%d docentes=%d salas=%d",
			r.BaselineConflicts.Total, r.BaselineConflicts.Teacher, r.BaselineConflicts.Room),
		fmt.Sprintf("Choques despues (optimizado): total=%d docentes=%d salas=%d",
			r.FinalConflicts.Total, r.FinalConflicts.Teacher, r.FinalConflicts.Room),
		fmt.Sprintf("CR real: %.2f %%", r.CR()),
		fmt.Sprintf("Resumen de pendientes: cursos sin asignar=%d minutos pendientes=%d",
			r.UnassignedCourses, r.UnassignedMinutes),
		"Generado por cmd/scheduler-metrics",
		strings.Repeat("=", 72),
	}
	return strings.Join(lines, "\n") + "\n"
}

// Measure loads the dataset, runs the optimizer `runs` times, and returns
// the measured report.
func Measure(ctx context.Context, db *sqlx.DB, runs int, label, termOption string) (*Report, error) {
	dataset, err := LoadDataset(ctx, db, termOption)
	if err != nil {
		return nil, err
	}

	courseInputs := toCourseInputs(dataset.TargetCourses)
	roomInputs := toRoomInputs(dataset.Rooms)
	timeslotInputs := toTimeslotInputs(dataset.Timeslots)

	lockedAssignments, err := LoadAssignments(ctx, db, dataset.LockedCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("load locked assignments: %w", err)
	}
	cons := buildConstraints(dataset.TargetCourses, dataset.LockedCourses, timeslotInputs, lockedAssignments)

	targetCourseIDs := make([]string, 0, len(dataset.TargetCourses))
	teacherByCourse := map[string]string{}
	for _, c := range dataset.TargetCourses {
		targetCourseIDs = append(targetCourseIDs, c.CourseID)
		teacherByCourse[c.CourseID] = c.TeacherID
	}

	baselineAssignments, err := LoadAssignments(ctx, db, targetCourseIDs)
	if err != nil {
		return nil, fmt.Errorf("load baseline assignments: %w", err)
	}
	baselineConflicts := countConflicts(baselineAssignments, teacherByCourse)

	durations := make([]float64, 0, runs)
	var finalConflicts conflictCounts
	unassignedCourses, unassignedMinutes := 0, 0

	for i := 0; i < runs; i++ {
		start := time.Now()
		result, err := scheduler.Solve(ctx, courseInputs, roomInputs, timeslotInputs, cons)
		if err != nil {
			return nil, fmt.Errorf("solve run %d: %w", i+1, err)
		}
		durations = append(durations, time.Since(start).Seconds())

		finalAssignments := make([]assignmentRow, 0, len(result.Assignments))
		for _, a := range result.Assignments {
			finalAssignments = append(finalAssignments, assignmentRow{CourseID: a.CourseID, RoomID: a.RoomID, TimeslotID: a.TimeslotID})
		}
		finalConflicts = countConflicts(finalAssignments, teacherByCourse)

		unassignedCourses = len(result.Unassigned)
		unassignedMinutes = 0
		for _, minutes := range result.Unassigned {
			unassignedMinutes += minutes
		}
	}

	return &Report{
		Label:             label,
		Runs:              runs,
		Durations:         durations,
		CourseCount:       len(courseInputs),
		RoomCount:         len(roomInputs),
		TimeslotCount:     len(timeslotInputs),
		LockedCourseCount: len(dataset.LockedCourseIDs),
		TermLabel:         dataset.TermLabel,
		BaselineConflicts: baselineConflicts,
		FinalConflicts:    finalConflicts,
		UnassignedCourses: unassignedCourses,
		UnassignedMinutes: unassignedMinutes,
	}, nil
}
