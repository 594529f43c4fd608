// Package bridge is the persistence bridge: it
// validates a batch of candidate assignments against stored entries and
// writes them transactionally, and projects the stored set back out for the
// overview query.
package bridge

import "time"

// CourseMeta is the metadata the bridge needs about a course to resolve its
// teacher and cohort for conflict checking.
type CourseMeta struct {
	CourseID          string `db:"course_id"`
	TeacherID         string `db:"teacher_id"`
	ProgramSemesterID string `db:"program_semester_id"`
}

// RoomMeta carries the human-facing room code used in overview rows.
type RoomMeta struct {
	RoomID string `db:"room_id"`
	Code   string `db:"code"`
}

// TimeslotMeta is the slot geometry the bridge needs to resolve absolute
// start/end times.
type TimeslotMeta struct {
	TimeslotID      string `db:"timeslot_id"`
	Day             int    `db:"day"`
	StartMinutes    int    `db:"start_minutes"`
	DurationMinutes int    `db:"duration_minutes"`
}

// CandidateAssignment is one entry of a save-assignments request.
// DurationMinutes and StartOffsetMinutes are optional; nil means "use the
// slot's default".
type CandidateAssignment struct {
	CourseID           string
	RoomID             string
	TimeslotID         string
	DurationMinutes    *int
	StartOffsetMinutes *int
}

// SaveRequest is the save-assignments input.
type SaveRequest struct {
	Assignments     []CandidateAssignment
	ReplaceExisting bool
}

// PersistedAssignment is one stored schedule entry, enriched with the
// derived absolute start/end times.
type PersistedAssignment struct {
	ID                 string    `db:"id"`
	CourseID           string    `db:"course_id"`
	RoomID             string    `db:"room_id"`
	TimeslotID         string    `db:"timeslot_id"`
	ProgramSemesterID  string    `db:"program_semester_id"`
	TeacherID          string    `db:"teacher_id"`
	DayOfWeek          int       `db:"day_of_week"`
	StartOffsetMinutes int       `db:"start_offset_minutes"`
	DurationMinutes    int       `db:"duration_minutes"`
	StartTime          time.Time `db:"start_time"`
	EndTime            time.Time `db:"end_time"`
	CreatedAt          time.Time `db:"created_at"`
}

// OverviewRow is one projected row of the overview query.
type OverviewRow struct {
	DayOfWeek          int       `json:"day_of_week" db:"day_of_week"`
	StartTime          time.Time `json:"start_time" db:"start_time"`
	EndTime            time.Time `json:"end_time" db:"end_time"`
	RoomCode           string    `json:"room_code" db:"room_code"`
	CourseID           string    `json:"course_id" db:"course_id"`
	TeacherID          string    `json:"teacher_id" db:"teacher_id"`
	ProgramSemesterID  string    `json:"program_semester_id" db:"program_semester_id"`
	DurationMinutes    int       `json:"duration_minutes" db:"duration_minutes"`
	StartOffsetMinutes int       `json:"start_offset_minutes" db:"start_offset_minutes"`
}
