package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-core/internal/bridge"
	"github.com/noah-isme/timetable-core/internal/dto"
	appErrors "github.com/noah-isme/timetable-core/pkg/errors"
	"github.com/noah-isme/timetable-core/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	Save(ctx context.Context, req dto.SaveScheduleRequest) ([]dto.PersistedAssignmentResponse, error)
	Overview(ctx context.Context, query dto.ScheduleOverviewQuery) ([]bridge.OverviewRow, error)
}

// ScheduleHandler exposes the timetable optimizer's HTTP surface: generate,
// save, and overview.
type ScheduleHandler struct {
	service scheduleGenerator
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleGenerator) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate builds a schedule proposal for the given courses/rooms/timeslots.
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save persists a batch of chosen assignments.
func (h *ScheduleHandler) Save(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	rows, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rows)
}

// Overview returns the stored schedule, optionally filtered by cohort or
// teacher.
func (h *ScheduleHandler) Overview(c *gin.Context) {
	query := dto.ScheduleOverviewQuery{
		ProgramSemesterID: c.Query("programSemesterId"),
		TeacherID:         c.Query("teacherId"),
	}
	rows, err := h.service.Overview(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
