package meeting

// ProcessResponse acknowledges a processing request. It reports only whether
// scheduling succeeded, never the eventual pipeline outcome.
type ProcessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
