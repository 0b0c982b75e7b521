package repositories

import (
	"context"
	"fmt"

	"github.com/meetmate-team/meetmate-backend/internal/domain/entities"
)

// StoreError is returned for any non-success response from the record store.
// Callers must not assume partial writes on error; each patch is a single
// independent write with no multi-row guarantee.
type StoreError struct {
	Status int
	Body   string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store error: %d - %s", e.Status, e.Body)
}

// RecordStore is the persistence gateway for meeting and profile records.
// Every call carries the caller's access token; the store enforces row-level
// access with it.
type RecordStore interface {
	// Read returns the records in collection matching id equality, with only
	// the given fields selected. An empty fields string selects everything.
	Read(ctx context.Context, collection, id, fields, accessToken string) ([]map[string]interface{}, error)

	// Patch updates the records in collection matching id equality with the
	// given fields. Returns without error even when no row matched.
	Patch(ctx context.Context, collection, id string, fields map[string]interface{}, accessToken string) error

	// GetMeeting returns the meeting with owner and name resolved, or nil
	// when no such meeting is visible to the caller.
	GetMeeting(ctx context.Context, meetingID, accessToken string) (*entities.MeetingRecord, error)

	// GetProfile returns the user's profile with the device token selected,
	// or nil when no profile exists.
	GetProfile(ctx context.Context, userID, accessToken string) (*entities.ProfileRecord, error)

	// MarkInProgress flips the meeting's inProgress flag.
	MarkInProgress(ctx context.Context, meetingID, accessToken string, inProgress bool) error

	// SaveResults persists transcript and summaries and clears inProgress in
	// a single patch. This is the sole completion point of a pipeline run.
	SaveResults(ctx context.Context, meetingID, accessToken string, segments []entities.TranscriptSegment, summary entities.SummaryPair) error
}
