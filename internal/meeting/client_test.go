package meeting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/liveclass-gateway/internal/application"
)

func testCredentials() Credentials {
	return Credentials{OrgID: "org-1", APIKey: "key-1"}
}

func assertBasicAuth(t *testing.T, r *http.Request) {
	t.Helper()
	org, key, ok := r.BasicAuth()
	if !ok || org != "org-1" || key != "key-1" {
		t.Errorf("missing or wrong basic auth: %q/%q", org, key)
	}
}

func TestCreateMeeting(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		if r.Method != http.MethodPost || r.URL.Path != "/meetings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Title         string `json:"title"`
			RecordOnStart bool   `json:"record_on_start"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Title != "Algebra II" {
			t.Errorf("unexpected title: %q", body.Title)
		}
		if !body.RecordOnStart {
			t.Error("expected recording enabled on start")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"meet-42"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "dyte", testCredentials(), server.Client())
	id, err := client.CreateMeeting(context.Background(), "Algebra II")
	if err != nil {
		t.Fatalf("CreateMeeting returned error: %v", err)
	}
	if id != "meet-42" {
		t.Fatalf("unexpected meeting id: %q", id)
	}
}

func TestCreateMeeting_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "dyte", testCredentials(), server.Client())
	if _, err := client.CreateMeeting(context.Background(), "Algebra II"); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestAddParticipant(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		if r.URL.Path != "/meetings/meet-42/participants" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			Name                string `json:"name"`
			PresetName          string `json:"preset_name"`
			CustomParticipantID string `json:"custom_participant_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Name != "Asha Rao" || body.PresetName != "group_call_host" || body.CustomParticipantID != "user-7" {
			t.Errorf("unexpected participant payload: %+v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"token":"tok-abc"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "dyte", testCredentials(), server.Client())
	token, err := client.AddParticipant(context.Background(), "meet-42", application.ParticipantInput{
		Name:           "Asha Rao",
		PresetName:     "group_call_host",
		ExternalUserID: "user-7",
	})
	if err != nil {
		t.Fatalf("AddParticipant returned error: %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertBasicAuth(t, r)
		if r.URL.Path != "/sessions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("associated_id"); got != "meet-42" {
			t.Errorf("unexpected associated_id: %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"sessions":[
			{"id":"rs-1","status":"ENDED","created_at":"2025-06-02T10:00:00Z","updated_at":"2025-06-02T11:00:00Z","duration":3600,"participants_count":12},
			{"id":"rs-2","status":"LIVE","created_at":"2025-06-02T12:00:00Z","updated_at":"2025-06-02T12:01:00Z"}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "dyte", testCredentials(), server.Client())
	sessions, err := client.ListSessions(context.Background(), "meet-42")
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	first := sessions[0]
	if first.ID != "rs-1" || first.Status != "ENDED" {
		t.Fatalf("unexpected session: %+v", first)
	}
	if first.DurationSeconds == nil || *first.DurationSeconds != 3600 {
		t.Fatalf("duration not decoded: %v", first.DurationSeconds)
	}
	if first.ParticipantsCount != 12 {
		t.Fatalf("participants count not decoded: %d", first.ParticipantsCount)
	}
	if !first.CreatedAt.Equal(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at not decoded: %v", first.CreatedAt)
	}

	if sessions[1].DurationSeconds != nil {
		t.Fatal("absent duration must decode as nil")
	}
}
