// Package meeting talks to the remote video-conferencing provider's REST
// API. The provider is consumed as an opaque service: meetings are created,
// participants are issued access tokens and historical sessions are listed.
package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/liveclass-gateway/internal/application"
)

// Credentials is the static organization credential pair configured
// process-wide.
type Credentials struct {
	OrgID  string
	APIKey string
}

// Client issues authenticated calls against the provider API.
type Client struct {
	baseURL     string
	provider    string
	credentials Credentials
	httpClient  *http.Client
}

// NewClient builds a provider client. A nil httpClient falls back to a
// default with a 15 second timeout.
func NewClient(baseURL, provider string, credentials Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		provider:    provider,
		credentials: credentials,
		httpClient:  httpClient,
	}
}

// Provider returns the platform tag stamped onto meeting references.
func (c *Client) Provider() string {
	return c.provider
}

type createMeetingRequest struct {
	Title         string `json:"title"`
	RecordOnStart bool   `json:"record_on_start"`
}

type createMeetingResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreateMeeting provisions a new remote meeting with recording enabled on
// start and returns its identifier.
func (c *Client) CreateMeeting(ctx context.Context, title string) (string, error) {
	var resp createMeetingResponse
	err := c.call(ctx, http.MethodPost, "/meetings", createMeetingRequest{
		Title:         title,
		RecordOnStart: true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("meeting: provider response missing meeting id")
	}
	return resp.Data.ID, nil
}

type addParticipantRequest struct {
	Name                string `json:"name"`
	PresetName          string `json:"preset_name"`
	CustomParticipantID string `json:"custom_participant_id"`
}

type addParticipantResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// AddParticipant registers a participant on the meeting and returns the
// access token granting them entry.
func (c *Client) AddParticipant(ctx context.Context, meetingID string, participant application.ParticipantInput) (string, error) {
	path := fmt.Sprintf("/meetings/%s/participants", url.PathEscape(meetingID))
	var resp addParticipantResponse
	err := c.call(ctx, http.MethodPost, path, addParticipantRequest{
		Name:                participant.Name,
		PresetName:          participant.PresetName,
		CustomParticipantID: participant.ExternalUserID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("meeting: provider response missing token")
	}
	return resp.Data.Token, nil
}

type remoteSessionPayload struct {
	ID                string    `json:"id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	DurationSeconds   *float64  `json:"duration"`
	ParticipantsCount int       `json:"participants_count"`
}

type listSessionsResponse struct {
	Data struct {
		Sessions []remoteSessionPayload `json:"sessions"`
	} `json:"data"`
}

// ListSessions returns the provider's historical sessions for a meeting.
func (c *Client) ListSessions(ctx context.Context, meetingID string) ([]application.RemoteSession, error) {
	path := "/sessions?associated_id=" + url.QueryEscape(meetingID)
	var resp listSessionsResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	sessions := make([]application.RemoteSession, 0, len(resp.Data.Sessions))
	for _, payload := range resp.Data.Sessions {
		sessions = append(sessions, application.RemoteSession{
			ID:                payload.ID,
			Status:            payload.Status,
			CreatedAt:         payload.CreatedAt,
			UpdatedAt:         payload.UpdatedAt,
			DurationSeconds:   payload.DurationSeconds,
			ParticipantsCount: payload.ParticipantsCount,
		})
	}
	return sessions, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("meeting: base URL is not configured")
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("meeting: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("meeting: build request: %w", err)
	}
	req.SetBasicAuth(c.credentials.OrgID, c.credentials.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meeting: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("meeting: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("meeting: decode response: %w", err)
		}
	}
	return nil
}
