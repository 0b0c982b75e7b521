package ai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/pkg/config"
)

// AssemblyAITranscriber is the alternate transcription backend, using the
// official SDK: upload the audio, then transcribe with speaker labels and
// map the utterances into segments.
type AssemblyAITranscriber struct {
	client  *aai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewAssemblyAITranscriber creates a transcriber using the provided config
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAITranscriber {
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &AssemblyAITranscriber{
		client: aai.NewClientWithOptions(
			aai.WithAPIKey(cfg.APIKey),
			aai.WithHTTPClient(&http.Client{Timeout: timeout}),
		),
		timeout: timeout,
		logger:  logger,
	}
}

// Transcribe uploads the audio and returns the ordered segment sequence
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audio []byte) ([]entities.TranscriptSegment, error) {
	// The SDK polls until the remote job settles and job contexts carry no
	// deadline of their own; bound the whole upload-and-poll cycle here.
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	uploadURL, err := t.client.Upload(ctx, bytes.NewReader(audio))
	if err != nil {
		return nil, &CapabilityError{Capability: "transcription", Err: fmt.Errorf("upload failed: %w", err)}
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, &CapabilityError{Capability: "transcription", Err: err}
	}

	if transcript.Status == "error" {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, &CapabilityError{Capability: "transcription", Err: fmt.Errorf("%s", msg)}
	}

	segments := make([]entities.TranscriptSegment, 0, len(transcript.Utterances))
	for _, utt := range transcript.Utterances {
		seg := entities.TranscriptSegment{}
		if utt.Text != nil {
			seg.Text = strings.TrimSpace(*utt.Text)
		}
		if utt.Start != nil {
			seg.Start = float64(*utt.Start) / 1000.0 // ms to seconds
		}
		if utt.End != nil {
			seg.End = float64(*utt.End) / 1000.0
		}
		segments = append(segments, seg)
	}

	// Without speaker labels the response may carry only the flat text.
	if len(segments) == 0 && transcript.Text != nil && strings.TrimSpace(*transcript.Text) != "" {
		var end float64
		if transcript.AudioDuration != nil {
			end = *transcript.AudioDuration
		}
		segments = append(segments, entities.TranscriptSegment{
			Text:  strings.TrimSpace(*transcript.Text),
			Start: 0,
			End:   end,
		})
	}

	if t.logger != nil {
		t.logger.Info("🎙️ Transcription complete",
			zap.Int("segments", len(segments)),
		)
	}

	return segments, nil
}
