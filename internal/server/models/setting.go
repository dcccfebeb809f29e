package models

import "time"

// Setting is a key/value row in app_settings. Encrypted marks values stored
// as field-cipher envelopes.
type Setting struct {
	Key       string
	Value     string
	Encrypted bool
	UpdatedAt time.Time
}
