package bridge

import "context"

// CourseLookup resolves a course id to the metadata the bridge needs for
// conflict checking. The scheduler core never sees this — it only works
// with the ids a caller already resolved into scheduler.CourseInput.
type CourseLookup interface {
	Course(ctx context.Context, courseID string) (CourseMeta, error)
}

// RoomLookup resolves a room id to its human-facing code.
type RoomLookup interface {
	Room(ctx context.Context, roomID string) (RoomMeta, error)
}

// TimeslotLookup resolves a timeslot id to its day/time geometry.
type TimeslotLookup interface {
	Timeslot(ctx context.Context, timeslotID string) (TimeslotMeta, error)
}
