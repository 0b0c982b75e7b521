package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// FetchError is returned when an audio download gets a non-success status
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to download audio: status %d from %s", e.Status, e.URL)
}

// HTTPFetcher downloads audio over HTTP with the caller's credential. The
// injected client must carry a minutes-scale timeout: recordings can be large
// and the download must not be cut by the short metadata timeout.
type HTTPFetcher struct {
	anonKey string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPFetcher creates an audio fetcher around the long-timeout client
func NewHTTPFetcher(cfg *config.SupabaseConfig, client *http.Client, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		anonKey: cfg.AnonKey,
		client:  client,
		logger:  logger,
	}
}

// Fetch downloads the audio bytes behind url using the access token
func (f *HTTPFetcher) Fetch(ctx context.Context, audioURL, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", f.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: audioURL, Status: resp.StatusCode}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio body: %w", err)
	}

	if f.logger != nil {
		f.logger.Info("📥 Downloaded audio",
			zap.String("url", audioURL),
			zap.Int("bytes", len(audio)),
		)
	}

	return audio, nil
}
