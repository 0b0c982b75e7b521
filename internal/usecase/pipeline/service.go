package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
	"github.com/meetmate-team/meetmate-backend/internal/domain/repositories"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/cache"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/storage"
)

// Placeholder pair persisted when the transcript carries no usable text;
// the summarization capability is not called in that case.
const (
	EmptySummaryText  = "No content to summarize."
	EmptySummaryShort = "No content."
)

// Transcriber turns audio bytes into an ordered transcript segment sequence
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) ([]entities.TranscriptSegment, error)
}

// Summarizer turns a transcript document into the {full, short} summary pair
type Summarizer interface {
	Summarize(ctx context.Context, document string) (entities.SummaryPair, error)
}

// AudioFetcher resolves a storage reference to raw audio bytes
type AudioFetcher interface {
	Fetch(ctx context.Context, ref, accessToken string) ([]byte, error)
}

// Notifier dispatches a push notification to a device token
type Notifier interface {
	Push(ctx context.Context, deviceToken, title, body, meetingID string) error
}

// Service orchestrates the meeting-processing workflow: fetch audio,
// transcribe, summarize, persist, notify. One Run per job; steps execute
// strictly in order, and only the two summary sub-calls inside the
// summarizer run concurrently.
type Service struct {
	store       repositories.RecordStore
	fetcher     AudioFetcher
	transcriber Transcriber
	summarizer  Summarizer
	notifier    Notifier
	guard       cache.MeetingGuard
	logger      *zap.Logger
}

// NewService constructs the pipeline service
func NewService(
	store repositories.RecordStore,
	fetcher AudioFetcher,
	transcriber Transcriber,
	summarizer Summarizer,
	notifier Notifier,
	guard cache.MeetingGuard,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:       store,
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		notifier:    notifier,
		guard:       guard,
		logger:      logger,
	}
}

// Run executes the full workflow for one meeting. It never returns an error:
// every failure is terminal to the job, logged with the meeting id and the
// stage that failed, and invisible to the scheduler. A failure after the
// in-progress marker is set leaves the record inProgress=true until the
// guard TTL re-allows a manual re-trigger.
func (s *Service) Run(ctx context.Context, job entities.PipelineJob) {
	defer s.guard.Release(ctx, job.MeetingID)

	// Step 1: mark in progress. Failing here is a hard stop; without state
	// tracking there is no point proceeding.
	if err := s.store.MarkInProgress(ctx, job.MeetingID, job.AccessToken, true); err != nil {
		s.failJob(job.MeetingID, "mark_in_progress", err)
		return
	}

	// Step 2: resolve the notification target. A missing device token only
	// disables the final notify step.
	deviceToken, err := s.resolveDeviceToken(ctx, job)
	if err != nil {
		s.failJob(job.MeetingID, "resolve_profile", err)
		return
	}
	if s.logger != nil {
		s.logger.Info("device token resolved",
			zap.String("meeting_id", job.MeetingID),
			zap.Bool("found", deviceToken != ""),
		)
	}

	// Step 3: pure string transform from the public reference to the
	// authenticated one.
	downloadURL := storage.ResolveAudioURL(job.AudioURL)

	// Step 4: download the audio with the long-timeout fetcher.
	audio, err := s.fetcher.Fetch(ctx, downloadURL, job.AccessToken)
	if err != nil {
		s.failJob(job.MeetingID, "fetch_audio", err)
		return
	}

	// Step 5: transcribe. Empty audio yields an empty sequence, not an error.
	segments, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		s.failJob(job.MeetingID, "transcribe", err)
		return
	}
	if s.logger != nil {
		s.logger.Info("🎙️ Transcription complete",
			zap.String("meeting_id", job.MeetingID),
			zap.Int("segments", len(segments)),
		)
	}

	// Step 6: summarize the newline-joined document, or short-circuit to
	// the placeholder pair without touching the capability.
	summary, err := s.summarize(ctx, segments)
	if err != nil {
		s.failJob(job.MeetingID, "summarize", err)
		return
	}

	// Step 7: persist everything in one patch. This is the sole point at
	// which the job counts as complete.
	if err := s.store.SaveResults(ctx, job.MeetingID, job.AccessToken, segments, summary); err != nil {
		s.failJob(job.MeetingID, "persist", err)
		return
	}

	// Step 8: best-effort notification. The job is already complete.
	if deviceToken != "" {
		body := fmt.Sprintf("%q has been transcribed and summarized.", job.MeetingName)
		if err := s.notifier.Push(ctx, deviceToken, "Transcription Complete", body, job.MeetingID); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to send push notification",
					zap.String("meeting_id", job.MeetingID),
					zap.Error(err),
				)
			}
		}
	} else if s.logger != nil {
		s.logger.Warn("no device token for user, skipping notification",
			zap.String("meeting_id", job.MeetingID),
			zap.String("user_id", job.UserID),
		)
	}

	if s.logger != nil {
		s.logger.Info("✅ Meeting processing complete",
			zap.String("meeting_id", job.MeetingID),
		)
	}
}

// resolveDeviceToken reads the owner's profile; a missing profile or token
// is not an error.
func (s *Service) resolveDeviceToken(ctx context.Context, job entities.PipelineJob) (string, error) {
	profile, err := s.store.GetProfile(ctx, job.UserID, job.AccessToken)
	if err != nil {
		return "", err
	}
	if !profile.HasDeviceToken() {
		return "", nil
	}
	return profile.DeviceToken, nil
}

// summarize builds the transcript document and generates the summary pair
func (s *Service) summarize(ctx context.Context, segments []entities.TranscriptSegment) (entities.SummaryPair, error) {
	document := entities.JoinSegmentText(segments)
	if strings.TrimSpace(document) == "" {
		return entities.SummaryPair{Text: EmptySummaryText, Short: EmptySummaryShort}, nil
	}
	return s.summarizer.Summarize(ctx, document)
}

// failJob logs a terminal job failure with its stage. Errors are contained
// here; nothing propagates to the launcher.
func (s *Service) failJob(meetingID, stage string, err error) {
	if s.logger != nil {
		s.logger.Error("❌ Meeting processing failed",
			zap.String("meeting_id", meetingID),
			zap.String("stage", stage),
			zap.Error(err),
		)
	}
}
