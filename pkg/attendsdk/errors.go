package attendsdk

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// UnknownErrorMessage is shown when a failed response carries no body at all.
const UnknownErrorMessage = "Unknown error"

// ErrNoToken is returned by helpers that need a stored session token.
var ErrNoToken = errors.New("no session token, log in first")

// ErrorResponse is the error body shape the attendance service uses. Either
// field may be missing.
type ErrorResponse struct {
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Body is the raw response body, possibly empty
	Body []byte
}

// Error implements the error interface with the normalized message.
func (e *APIError) Error() string {
	return ErrorMessage(e.Body)
}

// RawBody returns the body as text, or "" when there was none.
func (e *APIError) RawBody() string {
	return string(e.Body)
}

// String includes the status code, for logs.
func (e *APIError) String() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Error())
}

// ErrorMessage turns an error body into one display string:
//
//  1. an empty body gives "Unknown error"
//  2. a non-empty "error" field wins
//  3. then a non-empty "errors" list, joined with ", "
//  4. otherwise, including bodies that are not a JSON object of that shape,
//     the raw body text unchanged
//
// A whitespace-only body counts as empty, so it also gives "Unknown error"
// rather than passing the blank text through.
func ErrorMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return UnknownErrorMessage
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return string(body)
	}

	if errResp.Error != "" {
		return errResp.Error
	}
	if len(errResp.Errors) > 0 {
		return strings.Join(errResp.Errors, ", ")
	}

	return string(body)
}
