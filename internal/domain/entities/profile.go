package entities

// ProfileRecord is the record-store view of a user profile. Read-only from
// the pipeline's perspective; only the device token is selected.
type ProfileRecord struct {
	ID          string `json:"id"`
	DeviceToken string `json:"device_token"`
}

// HasDeviceToken reports whether push notifications can be delivered.
func (p *ProfileRecord) HasDeviceToken() bool {
	return p != nil && p.DeviceToken != ""
}
