package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/liveclass-gateway/internal/application"
)

// AdmissionAPI is the slice of the admission service the handlers need.
type AdmissionAPI interface {
	StartClass(ctx context.Context, caller application.Caller, batchID string) (application.AdmissionResult, error)
	JoinClass(ctx context.Context, caller application.Caller, batchID string) (application.AdmissionResult, error)
}

// CatalogAPI is the slice of the batch catalog the handlers need.
type CatalogAPI interface {
	CreateBatch(ctx context.Context, input application.CreateBatchInput) (application.Batch, error)
	GetBatch(ctx context.Context, id string) (application.Batch, error)
	ListSessions(ctx context.Context, batchID string) ([]application.Session, error)
	UpcomingOccurrences(ctx context.Context, batchID string, from, until time.Time) ([]application.ClassOccurrence, error)
}

// ClassHandler serves class admission and catalog routes.
type ClassHandler struct {
	admission AdmissionAPI
	catalog   CatalogAPI
}

// NewClassHandler builds the handler.
func NewClassHandler(admission AdmissionAPI, catalog CatalogAPI) *ClassHandler {
	return &ClassHandler{admission: admission, catalog: catalog}
}

type admissionResponse struct {
	MeetingID string `json:"meeting_id"`
	Provider  string `json:"provider"`
	AuthToken string `json:"auth_token"`
	Role      string `json:"role"`
}

func newAdmissionResponse(result application.AdmissionResult) admissionResponse {
	return admissionResponse{
		MeetingID: result.Meeting.MeetingID,
		Provider:  result.Meeting.Provider,
		AuthToken: result.AuthToken,
		Role:      string(result.Role),
	}
}

// Start handles POST /api/classes/:classId/start.
func (h *ClassHandler) Start(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing user identity"})
		return
	}

	result, err := h.admission.StartClass(c.Request.Context(), caller, c.Param("classId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAdmissionResponse(result))
}

// Join handles POST /api/classes/:classId/join.
func (h *ClassHandler) Join(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing user identity"})
		return
	}

	result, err := h.admission.JoinClass(c.Request.Context(), caller, c.Param("classId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAdmissionResponse(result))
}

const dateLayout = "2006-01-02"

type createBatchRequest struct {
	TenantID       string   `json:"tenant_id"`
	InstructorID   string   `json:"instructor_id"`
	Name           string   `json:"name"`
	StrictSchedule bool     `json:"strict_schedule"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	RecurringDays  []string `json:"recurring_days"`
	BatchTime      string   `json:"batch_time"`
}

type batchResponse struct {
	ID             string   `json:"id"`
	TenantID       string   `json:"tenant_id"`
	InstructorID   string   `json:"instructor_id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	StrictSchedule bool     `json:"strict_schedule"`
	StartDate      *string  `json:"start_date"`
	EndDate        *string  `json:"end_date"`
	RecurringDays  []string `json:"recurring_days"`
	BatchTime      string   `json:"batch_time"`
	MeetingID      string   `json:"meeting_id,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

func newBatchResponse(batch application.Batch) batchResponse {
	days := batch.RecurringDays
	if days == nil {
		days = []string{}
	}
	return batchResponse{
		ID:             batch.ID,
		TenantID:       batch.TenantID,
		InstructorID:   batch.InstructorID,
		Name:           batch.Name,
		Status:         string(batch.Status),
		StrictSchedule: batch.StrictSchedule,
		StartDate:      formatDate(batch.StartDate),
		EndDate:        formatDate(batch.EndDate),
		RecurringDays:  days,
		BatchTime:      batch.BatchTime,
		MeetingID:      batch.Meeting.MeetingID,
		Provider:       batch.Meeting.Provider,
		CreatedAt:      batch.CreatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(dateLayout)
	return &formatted
}

// Create handles POST /api/classes.
func (h *ClassHandler) Create(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input := application.CreateBatchInput{
		TenantID:       req.TenantID,
		InstructorID:   req.InstructorID,
		Name:           req.Name,
		StrictSchedule: req.StrictSchedule,
		RecurringDays:  req.RecurringDays,
		BatchTime:      req.BatchTime,
	}

	var err error
	if input.StartDate, err = parseDate(req.StartDate); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	if input.EndDate, err = parseDate(req.EndDate); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid end_date, expected YYYY-MM-DD"})
		return
	}

	batch, err := h.catalog.CreateBatch(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBatchResponse(batch))
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Get handles GET /api/classes/:classId.
func (h *ClassHandler) Get(c *gin.Context) {
	batch, err := h.catalog.GetBatch(c.Request.Context(), c.Param("classId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBatchResponse(batch))
}

type sessionResponse struct {
	ID                string  `json:"id"`
	BatchID           string  `json:"batch_id"`
	ScheduledStart    string  `json:"scheduled_start"`
	ScheduledEnd      string  `json:"scheduled_end"`
	ActualStart       string  `json:"actual_start"`
	ActualEnd         string  `json:"actual_end"`
	DurationMinutes   float64 `json:"duration_minutes"`
	Status            string  `json:"status"`
	ParticipantsCount int     `json:"participants_count"`
	Notes             string  `json:"notes,omitempty"`
}

type occurrenceResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// defaultOccurrenceDays bounds the projection when the caller does not ask
// for a specific horizon.
const (
	defaultOccurrenceDays = 14
	maxOccurrenceDays     = 90
)

// Occurrences handles GET /api/classes/:classId/occurrences.
func (h *ClassHandler) Occurrences(c *gin.Context) {
	days := defaultOccurrenceDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxOccurrenceDays {
			c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("days must be between 1 and %d", maxOccurrenceDays)})
			return
		}
		days = parsed
	}

	from := time.Now().UTC()
	occurrences, err := h.catalog.UpcomingOccurrences(c.Request.Context(), c.Param("classId"), from, from.AddDate(0, 0, days))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]occurrenceResponse, 0, len(occurrences))
	for _, occurrence := range occurrences {
		out = append(out, occurrenceResponse{
			Start: occurrence.Start.Format(time.RFC3339),
			End:   occurrence.End.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Sessions handles GET /api/classes/:classId/sessions.
func (h *ClassHandler) Sessions(c *gin.Context) {
	sessions, err := h.catalog.ListSessions(c.Request.Context(), c.Param("classId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionResponse{
			ID:                session.ID,
			BatchID:           session.BatchID,
			ScheduledStart:    session.ScheduledStart.Format(time.RFC3339),
			ScheduledEnd:      session.ScheduledEnd.Format(time.RFC3339),
			ActualStart:       session.ActualStart.Format(time.RFC3339),
			ActualEnd:         session.ActualEnd.Format(time.RFC3339),
			DurationMinutes:   session.DurationMinutes,
			Status:            string(session.Status),
			ParticipantsCount: session.ParticipantsCount,
			Notes:             session.Notes,
		})
	}
	c.JSON(http.StatusOK, out)
}
