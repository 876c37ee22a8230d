package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/liveclass-gateway/internal/application"
)

type admissionStub struct {
	result    application.AdmissionResult
	err       error
	startCall int
	joinCall  int
	caller    application.Caller
	batchID   string
}

func (a *admissionStub) StartClass(ctx context.Context, caller application.Caller, batchID string) (application.AdmissionResult, error) {
	a.startCall++
	a.caller = caller
	a.batchID = batchID
	return a.result, a.err
}

func (a *admissionStub) JoinClass(ctx context.Context, caller application.Caller, batchID string) (application.AdmissionResult, error) {
	a.joinCall++
	a.caller = caller
	a.batchID = batchID
	return a.result, a.err
}

type catalogStub struct {
	batch       application.Batch
	sessions    []application.Session
	occurrences []application.ClassOccurrence
	err         error
	input       application.CreateBatchInput
}

func (c *catalogStub) CreateBatch(ctx context.Context, input application.CreateBatchInput) (application.Batch, error) {
	c.input = input
	return c.batch, c.err
}

func (c *catalogStub) GetBatch(ctx context.Context, id string) (application.Batch, error) {
	return c.batch, c.err
}

func (c *catalogStub) ListSessions(ctx context.Context, batchID string) ([]application.Session, error) {
	return c.sessions, c.err
}

func (c *catalogStub) UpcomingOccurrences(ctx context.Context, batchID string, from, until time.Time) ([]application.ClassOccurrence, error) {
	return c.occurrences, c.err
}

type syncStub struct {
	count int
	err   error
}

func (s *syncStub) SyncSessions(ctx context.Context) (int, error) {
	return s.count, s.err
}

func newTestRouter(admission AdmissionAPI, catalog CatalogAPI, sync SessionSyncAPI) http.Handler {
	return NewRouter(RouterConfig{
		Classes: NewClassHandler(admission, catalog),
		Sync:    NewSyncHandler(sync),
	})
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func instructorHeaders() map[string]string {
	return map[string]string{
		headerUserID:    "user-1",
		headerUserEmail: "teach@example.com",
		headerUserRole:  "instructor",
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&admissionStub{}, &catalogStub{}, &syncStub{})
	recorder := doRequest(t, router, http.MethodGet, "/api/ping", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
}

func TestStartRequiresIdentityHeaders(t *testing.T) {
	t.Parallel()

	admission := &admissionStub{}
	router := newTestRouter(admission, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/start", "", nil)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
	if admission.startCall != 0 {
		t.Error("service must not be invoked without identity")
	}
}

func TestStartRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&admissionStub{}, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/start", "", map[string]string{
		headerUserID:   "user-1",
		headerUserRole: "janitor",
	})

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestStartReturnsAdmission(t *testing.T) {
	t.Parallel()

	admission := &admissionStub{result: application.AdmissionResult{
		Meeting:   application.MeetingRef{MeetingID: "meeting-1", Provider: "dyte"},
		AuthToken: "token-1",
		Role:      application.RoleInstructor,
	}}
	router := newTestRouter(admission, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/start", "", instructorHeaders())

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var resp admissionResponse
	decodeBody(t, recorder, &resp)
	if resp.MeetingID != "meeting-1" || resp.AuthToken != "token-1" || resp.Role != "instructor" {
		t.Errorf("unexpected response %+v", resp)
	}
	if admission.batchID != "batch-1" {
		t.Errorf("batch id = %q, want batch-1", admission.batchID)
	}
	if admission.caller.ID != "user-1" || admission.caller.Role != application.RoleInstructor {
		t.Errorf("caller = %+v, want header identity", admission.caller)
	}
}

func TestJoinSurfacesPolicyDenialVerbatim(t *testing.T) {
	t.Parallel()

	admission := &admissionStub{err: &application.PolicyDeniedError{Reason: "instructor has not started the class yet"}}
	router := newTestRouter(admission, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/join", "", instructorHeaders())

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}

	var resp errorResponse
	decodeBody(t, recorder, &resp)
	if resp.Error != "instructor has not started the class yet" {
		t.Errorf("error = %q, want verbatim denial reason", resp.Error)
	}
}

func TestStartMapsRoleDenialTo403(t *testing.T) {
	t.Parallel()

	admission := &admissionStub{err: application.ErrUnauthorized}
	router := newTestRouter(admission, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/start", "", map[string]string{
		headerUserID:   "student-1",
		headerUserRole: "student",
	})

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", recorder.Code)
	}
}

func TestStartHidesProviderFailures(t *testing.T) {
	t.Parallel()

	admission := &admissionStub{err: &application.ProviderError{Op: "create meeting", Err: errors.New("secret upstream detail")}}
	router := newTestRouter(admission, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes/batch-1/start", "", instructorHeaders())

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
	if strings.Contains(recorder.Body.String(), "secret upstream detail") {
		t.Error("provider cause leaked to the caller")
	}
}

func TestGetClassNotFound(t *testing.T) {
	t.Parallel()

	catalog := &catalogStub{err: application.ErrNotFound}
	router := newTestRouter(&admissionStub{}, catalog, &syncStub{})

	recorder := doRequest(t, router, http.MethodGet, "/api/classes/missing", "", nil)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestCreateClass(t *testing.T) {
	t.Parallel()

	catalog := &catalogStub{batch: application.Batch{
		ID:        "batch-1",
		Name:      "Algebra",
		Status:    application.BatchActive,
		CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}}
	router := newTestRouter(&admissionStub{}, catalog, &syncStub{})

	body := `{"tenant_id":"tenant-1","instructor_id":"instructor-1","name":"Algebra","strict_schedule":true,"start_date":"2025-06-02","recurring_days":["Monday"],"batch_time":"10:00 AM-11:00 AM"}`
	recorder := doRequest(t, router, http.MethodPost, "/api/classes", body, nil)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
	if catalog.input.Name != "Algebra" || !catalog.input.StrictSchedule {
		t.Errorf("service input = %+v", catalog.input)
	}
	if catalog.input.StartDate == nil || catalog.input.StartDate.Format("2006-01-02") != "2025-06-02" {
		t.Errorf("start date = %v, want 2025-06-02", catalog.input.StartDate)
	}
}

func TestCreateClassRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&admissionStub{}, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodPost, "/api/classes", `{"name":"Algebra","instructor_id":"i-1","start_date":"06/02/2025"}`, nil)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestListClassSessions(t *testing.T) {
	t.Parallel()

	catalog := &catalogStub{sessions: []application.Session{{
		ID:              "session-1",
		BatchID:         "batch-1",
		DurationMinutes: 1.02,
		Status:          application.SessionCompleted,
	}}}
	router := newTestRouter(&admissionStub{}, catalog, &syncStub{})

	recorder := doRequest(t, router, http.MethodGet, "/api/classes/batch-1/sessions", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var resp []sessionResponse
	decodeBody(t, recorder, &resp)
	if len(resp) != 1 || resp[0].DurationMinutes != 1.02 {
		t.Errorf("response = %+v", resp)
	}
}

func TestListClassOccurrences(t *testing.T) {
	t.Parallel()

	catalog := &catalogStub{occurrences: []application.ClassOccurrence{{
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
	}}}
	router := newTestRouter(&admissionStub{}, catalog, &syncStub{})

	recorder := doRequest(t, router, http.MethodGet, "/api/classes/batch-1/occurrences?days=7", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var resp []occurrenceResponse
	decodeBody(t, recorder, &resp)
	if len(resp) != 1 || resp[0].Start != "2025-06-02T10:00:00Z" {
		t.Errorf("response = %+v", resp)
	}
}

func TestListClassOccurrencesRejectsBadHorizon(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&admissionStub{}, &catalogStub{}, &syncStub{})

	recorder := doRequest(t, router, http.MethodGet, "/api/classes/batch-1/occurrences?days=500", "", nil)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestSyncReportsCount(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&admissionStub{}, &catalogStub{}, &syncStub{count: 3})

	recorder := doRequest(t, router, http.MethodPost, "/api/sessions/sync", "", nil)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var resp syncResponse
	decodeBody(t, recorder, &resp)
	if resp.Synced != 3 {
		t.Errorf("synced = %d, want 3", resp.Synced)
	}
}
