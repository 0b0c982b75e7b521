package entities

// SummaryPair holds the two generated summaries for a meeting.
// Short is capped at 250 characters after generation.
type SummaryPair struct {
	Text  string `json:"text"`
	Short string `json:"short"`
}

// MeetingRecord is the record-store view of a meeting. The record pre-exists
// before processing starts; the pipeline flips InProgress and populates
// Annotation and Summary at completion. JSON tags match the store's columns.
type MeetingRecord struct {
	ID         string              `json:"id"`
	UserID     string              `json:"users"`
	Name       string              `json:"name"`
	InProgress bool                `json:"inProgress"`
	Annotation []TranscriptSegment `json:"annotation,omitempty"`
	Summary    *SummaryPair        `json:"summary,omitempty"`
}

// DisplayName returns the meeting name with a fallback for unnamed meetings.
func (m *MeetingRecord) DisplayName() string {
	if m == nil || m.Name == "" {
		return "Your meeting"
	}
	return m.Name
}
