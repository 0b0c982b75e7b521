package meeting

// Session carries the caller's identity-provider session. The refresh token
// is accepted for wire compatibility but never used server-side.
type Session struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

// ProcessRequest triggers background processing of a recorded meeting
type ProcessRequest struct {
	AudioURL  string  `json:"audio_url" validate:"required,url"`
	MeetingID string  `json:"meeting_id" validate:"required"`
	Session   Session `json:"session" validate:"required"`
}
