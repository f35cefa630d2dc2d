package identity

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Prompt is what the operator needs to finish an interactive login in a
// browser: where to go, what to type, and until when the code is good.
type Prompt struct {
	VerificationURI string
	UserCode        string
	ExpiresAt       time.Time
	Message         string
}

// PendingLogin is the handle between BeginLogin and CompleteLogin. Only a
// PendingLogin returned by BeginLogin can be completed.
type PendingLogin struct {
	Prompt Prompt

	auth *oauth2.DeviceAuthResponse
}

func newPrompt(uri, code string, expiresAt time.Time) Prompt {
	return Prompt{
		VerificationURI: uri,
		UserCode:        code,
		ExpiresAt:       expiresAt,
		Message:         fmt.Sprintf("To sign in, open %s and enter the code %s", uri, code),
	}
}
