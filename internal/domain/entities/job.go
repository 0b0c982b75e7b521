package entities

// PipelineJob describes one execution of the meeting-processing workflow.
// Jobs live in memory only: created at schedule time, discarded at completion,
// never persisted and never retried after process exit.
type PipelineJob struct {
	MeetingID   string
	AudioURL    string
	UserID      string
	AccessToken string
	MeetingName string
}
