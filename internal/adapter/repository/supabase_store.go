package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/internal/domain/repositories"
	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// SupabaseStore is a RecordStore over the Supabase REST API. The HTTP client
// is injected so the connection pool is shared across jobs and closed by the
// composition root at shutdown.
type SupabaseStore struct {
	baseURL string
	anonKey string
	client  *http.Client
	logger  *zap.Logger
}

// NewSupabaseStore creates a record store gateway using the provided config
func NewSupabaseStore(cfg *config.SupabaseConfig, client *http.Client, logger *zap.Logger) *SupabaseStore {
	return &SupabaseStore{
		baseURL: cfg.URL,
		anonKey: cfg.AnonKey,
		client:  client,
		logger:  logger,
	}
}

// do performs one REST call and returns the raw response body.
// Non-2xx responses surface as *repositories.StoreError with status and body.
func (s *SupabaseStore) do(ctx context.Context, method, collection, id, fields string, body interface{}, accessToken string) ([]byte, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	if fields != "" {
		q.Set("select", fields)
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, collection, q.Encode())

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode patch body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("record store request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read record store response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &repositories.StoreError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// Read returns records from collection matching id equality
func (s *SupabaseStore) Read(ctx context.Context, collection, id, fields, accessToken string) ([]map[string]interface{}, error) {
	body, err := s.do(ctx, http.MethodGet, collection, id, fields, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	if len(body) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", collection, err)
	}
	return rows, nil
}

// Patch updates records in collection matching id equality
func (s *SupabaseStore) Patch(ctx context.Context, collection, id string, fields map[string]interface{}, accessToken string) error {
	_, err := s.do(ctx, http.MethodPatch, collection, id, "", fields, accessToken)
	return err
}

// GetMeeting returns the meeting with owner and name resolved, or nil
func (s *SupabaseStore) GetMeeting(ctx context.Context, meetingID, accessToken string) (*entities.MeetingRecord, error) {
	body, err := s.do(ctx, http.MethodGet, "meetings", meetingID, "id,users,name", nil, accessToken)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, nil
	}
	var meetings []entities.MeetingRecord
	if err := json.Unmarshal(body, &meetings); err != nil {
		return nil, fmt.Errorf("failed to decode meetings response: %w", err)
	}
	if len(meetings) == 0 {
		return nil, nil
	}
	return &meetings[0], nil
}

// GetProfile returns the user's profile with the device token, or nil
func (s *SupabaseStore) GetProfile(ctx context.Context, userID, accessToken string) (*entities.ProfileRecord, error) {
	body, err := s.do(ctx, http.MethodGet, "profiles", userID, "id,device_token", nil, accessToken)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, nil
	}
	var profiles []entities.ProfileRecord
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles response: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// MarkInProgress flips the meeting's inProgress flag
func (s *SupabaseStore) MarkInProgress(ctx context.Context, meetingID, accessToken string, inProgress bool) error {
	return s.Patch(ctx, "meetings", meetingID, map[string]interface{}{
		"inProgress": inProgress,
	}, accessToken)
}

// SaveResults persists transcript and summaries and clears inProgress in a
// single patch
func (s *SupabaseStore) SaveResults(ctx context.Context, meetingID, accessToken string, segments []entities.TranscriptSegment, summary entities.SummaryPair) error {
	// A nil slice would persist as JSON null; the store's annotation column
	// expects an array even for silent audio.
	if segments == nil {
		segments = []entities.TranscriptSegment{}
	}
	return s.Patch(ctx, "meetings", meetingID, map[string]interface{}{
		"annotation": segments,
		"summary":    summary,
		"inProgress": false,
	}, accessToken)
}

// Ping checks record-store reachability. Used once at boot; the pipeline
// itself never retries store calls.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.anonKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("record store unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &repositories.StoreError{Status: resp.StatusCode, Body: "record store unavailable"}
	}
	return nil
}
