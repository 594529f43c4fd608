package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-core/internal/bridge"
	"github.com/noah-isme/timetable-core/internal/dto"
)

type scheduleGeneratorMock struct {
	captured      dto.GenerateScheduleRequest
	overviewQuery dto.ScheduleOverviewQuery
	generateErr   error
	saveErr       error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerateScheduleResponse{}, nil
}

func (m *scheduleGeneratorMock) Save(ctx context.Context, req dto.SaveScheduleRequest) ([]dto.PersistedAssignmentResponse, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return []dto.PersistedAssignmentResponse{{ID: "row-1"}}, nil
}

func (m *scheduleGeneratorMock) Overview(ctx context.Context, query dto.ScheduleOverviewQuery) ([]bridge.OverviewRow, error) {
	m.overviewQuery = query
	return []bridge.OverviewRow{{CourseID: "c1"}}, nil
}

func TestScheduleHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleHandler{service: mockSvc}
	payload := []byte(`{"courses":[{"courseId":"c1","teacherId":"t1","weeklyHours":2,"programSemesterId":"ps1"}],"rooms":[{"roomId":"r1"}],"timeslots":[{"timeslotId":"ts1","durationMinutes":60}]}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "c1", mockSvc.captured.Courses[0].CourseID)
}

func TestScheduleHandlerGenerateRejectsInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ScheduleHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader([]byte(`{"courses":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerSaveSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ScheduleHandler{service: &scheduleGeneratorMock{}}
	payload := []byte(`{"assignments":[{"courseId":"c1","roomId":"r1","timeslotId":"ts1"}]}`)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/save", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestScheduleHandlerOverviewFiltersByQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodGet, "/schedules/overview?programSemesterId=ps1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Overview(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ps1", mockSvc.overviewQuery.ProgramSemesterID)
}
