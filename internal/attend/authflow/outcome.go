// Package authflow drives sign-in: the login state machine with its MFA
// challenge step, and registration followed by an automatic login. Both
// publish plain state values that a front end renders.
package authflow

import (
	"errors"

	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
)

// Messages placed in state. They are shown to the user verbatim.
const (
	MsgBlankCredentials  = "Username and password cannot be empty."
	MsgPasswordTooShort  = "Password must be at least 6 characters long."
	MsgUnknownResponse   = "Login failed: Unknown response from server."
	MsgUnknownError      = "An unknown error occurred."
	MsgNoLoginInProgress = "No login in progress. Please sign in again."
	MsgRegisterFailed    = "Registration failed"
	MsgAutoLoginFailed   = "Auto-login failed"
	MsgNoAccessToken     = "Auto-login failed: The server did not return an access token."
)

// MinPasswordLength is the shortest password registration accepts, in characters.
const MinPasswordLength = 6

// OutcomeKind classifies one login attempt.
type OutcomeKind int

const (
	// OutcomeSuccess: a 2xx response carrying an access token.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeMFARequired: a 2xx challenge asking for a one-time code.
	OutcomeMFARequired
	// OutcomeProtocolMismatch: a 2xx response that is neither of the above.
	OutcomeProtocolMismatch
	// OutcomeServerRejection: a non-2xx response.
	OutcomeServerRejection
	// OutcomeTransportFailure: no usable response at all.
	OutcomeTransportFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeMFARequired:
		return "mfa_required"
	case OutcomeProtocolMismatch:
		return "protocol_mismatch"
	case OutcomeServerRejection:
		return "server_rejection"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is the interpreted result of a login request.
type Outcome struct {
	Kind OutcomeKind

	// Set for OutcomeSuccess.
	Token       string
	DisplayName string
	Role        string

	// Set for the failure kinds.
	Message string

	// StatusCode is the HTTP status for OutcomeServerRejection.
	StatusCode int
}

// interpretLogin maps the result of Client.Login onto an Outcome. The MFA
// challenge is checked before the token.
func interpretLogin(resp *attendsdk.AuthResponse, err error) Outcome {
	if err != nil {
		var apiErr *attendsdk.APIError
		if errors.As(err, &apiErr) {
			return Outcome{
				Kind:       OutcomeServerRejection,
				Message:    attendsdk.ErrorMessage(apiErr.Body),
				StatusCode: apiErr.StatusCode,
			}
		}
		return Outcome{Kind: OutcomeTransportFailure, Message: failureMessage(err)}
	}

	if resp == nil {
		return Outcome{Kind: OutcomeProtocolMismatch, Message: MsgUnknownResponse}
	}

	if resp.Message == attendsdk.MFARequiredMessage {
		return Outcome{Kind: OutcomeMFARequired}
	}

	if resp.AccessToken != "" {
		out := Outcome{Kind: OutcomeSuccess, Token: resp.AccessToken}
		if resp.User != nil {
			out.DisplayName = resp.User.FullName
			out.Role = resp.User.Role
		}
		return out
	}

	return Outcome{Kind: OutcomeProtocolMismatch, Message: MsgUnknownResponse}
}

// failureMessage is err's text, or MsgUnknownError when it has none.
func failureMessage(err error) string {
	if err == nil {
		return MsgUnknownError
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnknownError
}
