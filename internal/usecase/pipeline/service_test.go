package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
)

type markCall struct {
	meetingID  string
	inProgress bool
}

type saveCall struct {
	meetingID string
	segments  []entities.TranscriptSegment
	summary   entities.SummaryPair
}

type fakeStore struct {
	mu         sync.Mutex
	profiles   map[string]*entities.ProfileRecord
	profileErr error
	markErr    error
	saveErr    error
	marks      []markCall
	saves      []saveCall
}

func (s *fakeStore) Read(_ context.Context, _, _, _, _ string) ([]map[string]interface{}, error) {
	return nil, nil
}

func (s *fakeStore) Patch(_ context.Context, _, _ string, _ map[string]interface{}, _ string) error {
	return nil
}

func (s *fakeStore) GetMeeting(_ context.Context, _, _ string) (*entities.MeetingRecord, error) {
	return nil, nil
}

func (s *fakeStore) GetProfile(_ context.Context, userID, _ string) (*entities.ProfileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profiles[userID], nil
}

func (s *fakeStore) MarkInProgress(_ context.Context, meetingID, _ string, inProgress bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.marks = append(s.marks, markCall{meetingID: meetingID, inProgress: inProgress})
	return nil
}

func (s *fakeStore) SaveResults(_ context.Context, meetingID, _ string, segments []entities.TranscriptSegment, summary entities.SummaryPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, saveCall{meetingID: meetingID, segments: segments, summary: summary})
	return nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	audio map[string][]byte
	err   error
	refs  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, ref, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, ref)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio[ref], nil
}

type fakeTranscriber struct {
	mu       sync.Mutex
	segments map[string][]entities.TranscriptSegment
	err      error
	calls    int
}

func (t *fakeTranscriber) Transcribe(_ context.Context, audio []byte) ([]entities.TranscriptSegment, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return nil, t.err
	}
	return t.segments[string(audio)], nil
}

type fakeSummarizer struct {
	mu    sync.Mutex
	pairs map[string]entities.SummaryPair
	err   error
	docs  []string
}

func (s *fakeSummarizer) Summarize(_ context.Context, document string) (entities.SummaryPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, document)
	if s.err != nil {
		return entities.SummaryPair{}, s.err
	}
	return s.pairs[document], nil
}

type pushCall struct {
	deviceToken string
	title       string
	body        string
	meetingID   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	pushes []pushCall
}

func (n *fakeNotifier) Push(_ context.Context, deviceToken, title, body, meetingID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, pushCall{deviceToken: deviceToken, title: title, body: body, meetingID: meetingID})
	return n.err
}

type fakeGuard struct {
	mu       sync.Mutex
	released []string
}

func (g *fakeGuard) Acquire(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, meetingID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, meetingID)
}

type pipelineFixture struct {
	store       *fakeStore
	fetcher     *fakeFetcher
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	notifier    *fakeNotifier
	guard       *fakeGuard
	svc         *Service
}

func newFixture() *pipelineFixture {
	f := &pipelineFixture{
		store:       &fakeStore{profiles: map[string]*entities.ProfileRecord{}},
		fetcher:     &fakeFetcher{audio: map[string][]byte{}},
		transcriber: &fakeTranscriber{segments: map[string][]entities.TranscriptSegment{}},
		summarizer:  &fakeSummarizer{pairs: map[string]entities.SummaryPair{}},
		notifier:    &fakeNotifier{},
		guard:       &fakeGuard{},
	}
	f.svc = NewService(f.store, f.fetcher, f.transcriber, f.summarizer, f.notifier, f.guard, zap.NewNop())
	return f
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture()

	f.store.profiles["user-1"] = &entities.ProfileRecord{ID: "user-1", DeviceToken: "ExponentPushToken[abc]"}
	f.fetcher.audio["https://store.example.com/storage/v1/object/recordings/m1.m4a"] = []byte("audio-bytes")
	segments := []entities.TranscriptSegment{{Text: "ok", Start: 0.0, End: 1.0}}
	f.transcriber.segments["audio-bytes"] = segments
	f.summarizer.pairs["ok"] = entities.SummaryPair{Text: "Meeting discussed X.", Short: "Discussed X."}

	f.svc.Run(context.Background(), entities.PipelineJob{
		MeetingID:   "meeting-1",
		AudioURL:    "https://store.example.com/storage/v1/object/public/recordings/m1.m4a",
		UserID:      "user-1",
		AccessToken: "token-1",
		MeetingName: "Standup",
	})

	require.Len(t, f.store.marks, 1)
	assert.Equal(t, markCall{meetingID: "meeting-1", inProgress: true}, f.store.marks[0])

	// The public storage URL must be rewritten to the authenticated form
	// before download.
	require.Len(t, f.fetcher.refs, 1)
	assert.Equal(t, "https://store.example.com/storage/v1/object/recordings/m1.m4a", f.fetcher.refs[0])

	require.Len(t, f.store.saves, 1)
	assert.Equal(t, segments, f.store.saves[0].segments)
	assert.Equal(t, entities.SummaryPair{Text: "Meeting discussed X.", Short: "Discussed X."}, f.store.saves[0].summary)

	require.Len(t, f.notifier.pushes, 1)
	push := f.notifier.pushes[0]
	assert.Equal(t, "ExponentPushToken[abc]", push.deviceToken)
	assert.Equal(t, "Transcription Complete", push.title)
	assert.Equal(t, `"Standup" has been transcribed and summarized.`, push.body)
	assert.Equal(t, "meeting-1", push.meetingID)

	assert.Equal(t, []string{"meeting-1"}, f.guard.released)
}

func TestRunEmptyTranscriptUsesPlaceholders(t *testing.T) {
	tests := []struct {
		name     string
		segments []entities.TranscriptSegment
	}{
		{"no segments", nil},
		{"whitespace only", []entities.TranscriptSegment{{Text: "  "}, {Text: "\t"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.fetcher.audio["url"] = []byte("silence")
			f.transcriber.segments["silence"] = tt.segments

			f.svc.Run(context.Background(), entities.PipelineJob{
				MeetingID: "meeting-1",
				AudioURL:  "url",
				UserID:    "user-1",
			})

			assert.Empty(t, f.summarizer.docs, "summarizer must not be called for an empty transcript")
			require.Len(t, f.store.saves, 1)
			assert.Equal(t, entities.SummaryPair{
				Text:  "No content to summarize.",
				Short: "No content.",
			}, f.store.saves[0].summary)
		})
	}
}

func TestRunMarkInProgressFailureStopsPipeline(t *testing.T) {
	f := newFixture()
	f.store.markErr = fmt.Errorf("store down")

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Empty(t, f.fetcher.refs)
	assert.Zero(t, f.transcriber.calls)
	assert.Empty(t, f.summarizer.docs)
	assert.Empty(t, f.store.saves)
	assert.Empty(t, f.notifier.pushes)
	assert.Equal(t, []string{"meeting-1"}, f.guard.released, "guard must be released on failure")
}

func TestRunProfileFailureStopsPipeline(t *testing.T) {
	f := newFixture()
	f.store.profileErr = fmt.Errorf("store down")

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Empty(t, f.fetcher.refs)
	assert.Empty(t, f.store.saves)
	assert.Equal(t, []string{"meeting-1"}, f.guard.released)
}

func TestRunFetchFailureStopsPipeline(t *testing.T) {
	f := newFixture()
	f.fetcher.err = fmt.Errorf("404 from storage")

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Zero(t, f.transcriber.calls)
	assert.Empty(t, f.summarizer.docs)
	assert.Empty(t, f.store.saves)
	assert.Empty(t, f.notifier.pushes)
}

func TestRunTranscribeFailureStopsPipeline(t *testing.T) {
	f := newFixture()
	f.fetcher.audio["url"] = []byte("audio")
	f.transcriber.err = fmt.Errorf("capability unavailable")

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Empty(t, f.summarizer.docs)
	assert.Empty(t, f.store.saves)
}

func TestRunSummarizeFailureSkipsPersist(t *testing.T) {
	f := newFixture()
	f.fetcher.audio["url"] = []byte("audio")
	f.transcriber.segments["audio"] = []entities.TranscriptSegment{{Text: "hello"}}
	f.summarizer.err = fmt.Errorf("capability unavailable")

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Empty(t, f.store.saves)
	assert.Empty(t, f.notifier.pushes)
}

func TestRunPersistFailureSkipsNotify(t *testing.T) {
	f := newFixture()
	f.store.profiles["user-1"] = &entities.ProfileRecord{ID: "user-1", DeviceToken: "tok"}
	f.store.saveErr = fmt.Errorf("store down")
	f.fetcher.audio["url"] = []byte("audio")
	f.transcriber.segments["audio"] = []entities.TranscriptSegment{{Text: "hello"}}
	f.summarizer.pairs["hello"] = entities.SummaryPair{Text: "t", Short: "s"}

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Empty(t, f.notifier.pushes)
}

func TestRunMissingDeviceTokenSkipsNotifyOnly(t *testing.T) {
	tests := []struct {
		name    string
		profile *entities.ProfileRecord
	}{
		{"no profile row", nil},
		{"empty token", &entities.ProfileRecord{ID: "user-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.profile != nil {
				f.store.profiles["user-1"] = tt.profile
			}
			f.fetcher.audio["url"] = []byte("audio")
			f.transcriber.segments["audio"] = []entities.TranscriptSegment{{Text: "hello"}}
			f.summarizer.pairs["hello"] = entities.SummaryPair{Text: "t", Short: "s"}

			f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

			assert.Len(t, f.store.saves, 1, "results must still be persisted")
			assert.Empty(t, f.notifier.pushes)
		})
	}
}

func TestRunNotifyFailureDoesNotUndoCompletion(t *testing.T) {
	f := newFixture()
	f.store.profiles["user-1"] = &entities.ProfileRecord{ID: "user-1", DeviceToken: "tok"}
	f.notifier.err = fmt.Errorf("expo unreachable")
	f.fetcher.audio["url"] = []byte("audio")
	f.transcriber.segments["audio"] = []entities.TranscriptSegment{{Text: "hello"}}
	f.summarizer.pairs["hello"] = entities.SummaryPair{Text: "t", Short: "s"}

	f.svc.Run(context.Background(), entities.PipelineJob{MeetingID: "meeting-1", AudioURL: "url", UserID: "user-1"})

	assert.Len(t, f.store.saves, 1)
	assert.Len(t, f.notifier.pushes, 1)
}

func TestRunFallbackMeetingNameInNotification(t *testing.T) {
	f := newFixture()
	f.store.profiles["user-1"] = &entities.ProfileRecord{ID: "user-1", DeviceToken: "tok"}
	f.fetcher.audio["url"] = []byte("audio")
	f.transcriber.segments["audio"] = []entities.TranscriptSegment{{Text: "hello"}}
	f.summarizer.pairs["hello"] = entities.SummaryPair{Text: "t", Short: "s"}

	record := &entities.MeetingRecord{ID: "meeting-1", UserID: "user-1"}
	f.svc.Run(context.Background(), entities.PipelineJob{
		MeetingID:   "meeting-1",
		AudioURL:    "url",
		UserID:      "user-1",
		MeetingName: record.DisplayName(),
	})

	require.Len(t, f.notifier.pushes, 1)
	assert.Equal(t, `"Your meeting" has been transcribed and summarized.`, f.notifier.pushes[0].body)
}

func TestRunConcurrentMeetingsAreIsolated(t *testing.T) {
	f := newFixture()
	f.fetcher.audio["url-a"] = []byte("audio-a")
	f.fetcher.audio["url-b"] = []byte("audio-b")
	f.transcriber.segments["audio-a"] = []entities.TranscriptSegment{{Text: "alpha", Start: 0, End: 1}}
	f.transcriber.segments["audio-b"] = []entities.TranscriptSegment{{Text: "beta", Start: 0, End: 2}}
	f.summarizer.pairs["alpha"] = entities.SummaryPair{Text: "about alpha", Short: "alpha"}
	f.summarizer.pairs["beta"] = entities.SummaryPair{Text: "about beta", Short: "beta"}

	var wg sync.WaitGroup
	for _, job := range []entities.PipelineJob{
		{MeetingID: "meeting-a", AudioURL: "url-a", UserID: "user-a"},
		{MeetingID: "meeting-b", AudioURL: "url-b", UserID: "user-b"},
	} {
		wg.Add(1)
		go func(job entities.PipelineJob) {
			defer wg.Done()
			f.svc.Run(context.Background(), job)
		}(job)
	}
	wg.Wait()

	require.Len(t, f.store.saves, 2)
	byMeeting := map[string]saveCall{}
	for _, save := range f.store.saves {
		byMeeting[save.meetingID] = save
	}
	assert.Equal(t, "alpha", byMeeting["meeting-a"].segments[0].Text)
	assert.Equal(t, "about alpha", byMeeting["meeting-a"].summary.Text)
	assert.Equal(t, "beta", byMeeting["meeting-b"].segments[0].Text)
	assert.Equal(t, "about beta", byMeeting["meeting-b"].summary.Text)
}
