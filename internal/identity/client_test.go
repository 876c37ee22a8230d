package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDisplayNameResolvesUser(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/users/user-1" {
			t.Errorf("path = %s, want /users/user-1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"id":"user-1","name":"Asha Rao"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)

	name, err := client.DisplayName(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DisplayName returned error: %v", err)
	}
	if name != "Asha Rao" {
		t.Errorf("name = %q, want %q", name, "Asha Rao")
	}
}

func TestDisplayNameErrorOnNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)

	if _, err := client.DisplayName(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestDisplayNameErrorOnBlankName(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"id":"user-2","name":"  "}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client(), nil)

	if _, err := client.DisplayName(context.Background(), "user-2"); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestDisplayNameRequiresUserID(t *testing.T) {
	t.Parallel()

	client := NewClient("http://identity.local", nil, nil)

	if _, err := client.DisplayName(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
}

func TestDisplayNameRequiresBaseURL(t *testing.T) {
	t.Parallel()

	client := NewClient("", nil, nil)

	if _, err := client.DisplayName(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when base URL is not configured")
	}
}
