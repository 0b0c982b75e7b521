package entities

import "strings"

// TranscriptSegment is a time-bounded slice of transcribed speech.
// Start and End are offsets into the source audio in seconds; a well-formed
// segment has Start <= End, and a transcript is ordered by Start non-decreasing.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// JoinSegmentText concatenates segment texts into a single document, one
// newline per segment boundary, preserving segment order.
func JoinSegmentText(segments []TranscriptSegment) string {
	if len(segments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, "\n")
}
