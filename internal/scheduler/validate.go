package scheduler

import (
	"fmt"

	appErrors "github.com/noah-isme/timetable-core/pkg/errors"
)

// validateInputs rejects malformed requests at the edge: no partial solves
// run against bad input.
func validateInputs(courses []CourseInput, rooms []RoomInput, slots []TimeslotInput) error {
	if len(courses) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "course list must not be empty")
	}
	if len(rooms) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "room list must not be empty")
	}

	for _, c := range courses {
		if c.CourseID == "" {
			return appErrors.Clone(appErrors.ErrValidation, "course_id is required")
		}
		if c.WeeklyHours < 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("negative weekly_hours for course %s", c.CourseID))
		}
	}

	for _, s := range slots {
		if s.DurationMinutes <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("non-positive duration_minutes for timeslot %s", s.TimeslotID))
		}
		if s.StartMinutes < 0 || s.StartMinutes >= 1440 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start_minutes out of range for timeslot %s", s.TimeslotID))
		}
		if s.Day < 0 || s.Day > 6 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day out of range for timeslot %s", s.TimeslotID))
		}
	}

	return nil
}
