package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// WhisperClient is a minimal client for the OpenAI-compatible
// /v1/audio/transcriptions endpoint. The response is decoded by hand because
// whisper-compatible servers do not agree on the exact segment shape across
// versions; see wireSegment.
type WhisperClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewWhisperClient creates a transcription client using the provided config.
// The client timeout is minutes-scale: transcribing long recordings is slow.
func NewWhisperClient(cfg *config.OpenAIConfig) *WhisperClient {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	return &WhisperClient{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   cfg.WhisperModel,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// transcriptionResponse is the verbose_json response shape
type transcriptionResponse struct {
	Segments []wireSegment `json:"segments"`
}

// wireSegment tolerates the segment representations seen in the wild:
// start/end arrive as JSON numbers from some servers and as quoted numbers
// from others. Unknown extra fields are ignored.
type wireSegment struct {
	Text  string    `json:"text"`
	Start flexFloat `json:"start"`
	End   flexFloat `json:"end"`
}

// flexFloat decodes a float from either a JSON number or a numeric string
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("invalid segment offset %q: %w", str, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// normalizeSegments maps wire segments into the internal shape, trimming
// whitespace per segment. Loose wire representations do not leak past here.
func normalizeSegments(wire []wireSegment) []entities.TranscriptSegment {
	segments := make([]entities.TranscriptSegment, 0, len(wire))
	for _, ws := range wire {
		segments = append(segments, entities.TranscriptSegment{
			Text:  strings.TrimSpace(ws.Text),
			Start: float64(ws.Start),
			End:   float64(ws.End),
		})
	}
	return segments
}

// Transcribe sends audio bytes for transcription and returns the ordered
// segment sequence. Empty or silent audio yields an empty sequence.
func (w *WhisperClient) Transcribe(ctx context.Context, audio []byte) ([]entities.TranscriptSegment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "audio.m4a")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.WriteField("model", w.model); err != nil {
		return nil, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, err
	}
	if err := mw.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := w.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, &CapabilityError{Capability: "transcription", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &CapabilityError{
			Capability: "transcription",
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &CapabilityError{Capability: "transcription", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return normalizeSegments(tr.Segments), nil
}
