package api

import (
	"time"

	"github.com/user/oneclick-vpn/internal/core"
)

// TimeNow is replaceable in tests.
var TimeNow = time.Now

// StatusResponse is the payload for GET /v1/status.
type StatusResponse struct {
	core.StatusPayload
	GeneratedAt string `json:"generated_at"`
}

// ProfileView describes one bundled profile.
type ProfileView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ProfilesResponse is the payload for GET /v1/profiles.
type ProfilesResponse struct {
	Selected string        `json:"selected"`
	Profiles []ProfileView `json:"profiles"`
}

// ProfileRequest is the body of PUT /v1/profile and the optional body of
// POST /v1/connect and /v1/toggle.
type ProfileRequest struct {
	Profile string `json:"profile"`
}

// CommandResponse acknowledges an accepted command.
type CommandResponse struct {
	Accepted bool   `json:"accepted"`
	Command  string `json:"command"`
	Profile  string `json:"profile,omitempty"`
}

// APIError is the body of every error response.
type APIError struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func timestamp() string {
	return TimeNow().UTC().Format(time.RFC3339)
}
