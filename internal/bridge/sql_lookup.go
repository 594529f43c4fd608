package bridge

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLLookup answers CourseLookup/RoomLookup/TimeslotLookup directly against
// the catalog tables the scheduling domain already has rows for.
type SQLLookup struct {
	db *sqlx.DB
}

// NewSQLLookup wires a SQLLookup against a pool.
func NewSQLLookup(db *sqlx.DB) *SQLLookup {
	return &SQLLookup{db: db}
}

func (l *SQLLookup) Course(ctx context.Context, courseID string) (CourseMeta, error) {
	var meta CourseMeta
	query := `SELECT id AS course_id, teacher_id, program_semester_id FROM courses WHERE id = $1`
	if err := sqlx.GetContext(ctx, l.db, &meta, query, courseID); err != nil {
		return CourseMeta{}, fmt.Errorf("lookup course %s: %w", courseID, err)
	}
	return meta, nil
}

func (l *SQLLookup) Room(ctx context.Context, roomID string) (RoomMeta, error) {
	var meta RoomMeta
	query := `SELECT id AS room_id, code FROM rooms WHERE id = $1`
	if err := sqlx.GetContext(ctx, l.db, &meta, query, roomID); err != nil {
		return RoomMeta{}, fmt.Errorf("lookup room %s: %w", roomID, err)
	}
	return meta, nil
}

func (l *SQLLookup) Timeslot(ctx context.Context, timeslotID string) (TimeslotMeta, error) {
	var meta TimeslotMeta
	query := `SELECT id AS timeslot_id, day_of_week AS day, start_minutes, duration_minutes FROM timeslots WHERE id = $1`
	if err := sqlx.GetContext(ctx, l.db, &meta, query, timeslotID); err != nil {
		return TimeslotMeta{}, fmt.Errorf("lookup timeslot %s: %w", timeslotID, err)
	}
	return meta, nil
}
