package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Repository persists assignment rows against the
// program_semester_schedule_slots table, following the same
// exec-fallback/NamedExecContext idiom the rest of the host application's
// repositories use for optional-transaction support.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wires a Repository against a pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BeginTxx exposes the underlying pool's transaction entry point so the
// service layer can drive an atomic save without depending on *sqlx.DB
// directly.
func (r *Repository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

const upsertAssignmentQuery = `
INSERT INTO program_semester_schedule_slots (
	id, course_id, room_id, timeslot_id, program_semester_id, teacher_id, day_of_week,
	start_offset_minutes, duration_minutes, start_time, end_time, created_at
) VALUES (
	:id, :course_id, :room_id, :timeslot_id, :program_semester_id, :teacher_id, :day_of_week,
	:start_offset_minutes, :duration_minutes, :start_time, :end_time, :created_at
)
ON CONFLICT (course_id, timeslot_id, start_offset_minutes) DO UPDATE SET
	room_id = EXCLUDED.room_id,
	duration_minutes = EXCLUDED.duration_minutes,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time
`

// UpsertBatch persists each assignment row, one NamedExecContext call per
// row, against exec (a transaction when the caller is mid-save, the pool
// otherwise).
func (r *Repository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, rows []PersistedAssignment) error {
	target := r.exec(exec)
	for i := range rows {
		if _, err := sqlx.NamedExecContext(ctx, target, upsertAssignmentQuery, rows[i]); err != nil {
			return fmt.Errorf("upsert assignment %s/%s: %w", rows[i].CourseID, rows[i].TimeslotID, err)
		}
	}
	return nil
}

// DeleteByProgramSemesters removes every stored row for the given
// program_semester_ids, used by replace_existing saves to clear the slate
// before the new batch is written.
func (r *Repository) DeleteByProgramSemesters(ctx context.Context, exec sqlx.ExtContext, programSemesterIDs []string) error {
	if len(programSemesterIDs) == 0 {
		return nil
	}
	target := r.exec(exec)
	query, args, err := sqlx.In(
		`DELETE FROM program_semester_schedule_slots WHERE program_semester_id IN (?)`,
		programSemesterIDs,
	)
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	query = target.Rebind(query)
	if _, err := target.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete existing assignments: %w", err)
	}
	return nil
}

// ListExisting returns every currently stored row, used by the save path to
// check the incoming batch for overlaps against what is already committed.
func (r *Repository) ListExisting(ctx context.Context) ([]PersistedAssignment, error) {
	var rows []PersistedAssignment
	query := `SELECT id, course_id, room_id, timeslot_id, program_semester_id, teacher_id, day_of_week,
		start_offset_minutes, duration_minutes, start_time, end_time, created_at
		FROM program_semester_schedule_slots`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("list existing assignments: %w", err)
	}
	return rows, nil
}

// Overview projects the stored set, optionally filtered by
// program_semester_id and/or teacher_id (either may be empty to mean "any").
func (r *Repository) Overview(ctx context.Context, programSemesterID, teacherID string) ([]OverviewRow, error) {
	var rows []OverviewRow
	var conditions []string
	var args []any

	query := `SELECT s.day_of_week AS day_of_week, s.start_time, s.end_time, r.code AS room_code,
		s.course_id, s.teacher_id, s.program_semester_id, s.duration_minutes, s.start_offset_minutes
		FROM program_semester_schedule_slots s
		JOIN rooms r ON r.id = s.room_id`

	if programSemesterID != "" {
		conditions = append(conditions, "s.program_semester_id = ?")
		args = append(args, programSemesterID)
	}
	if teacherID != "" {
		conditions = append(conditions, "s.teacher_id = ?")
		args = append(args, teacherID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.day_of_week ASC, s.start_time ASC"

	query = r.db.Rebind(query)
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("overview query: %w", err)
	}
	return rows, nil
}
