package folioapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// APIError represents a failed API call
type APIError struct {
	kind       models.ErrorKind
	StatusCode int
	Code       string // backend error code, e.g. SYMBOL_NOT_FOUND
	Message    string
	Endpoint   string
	Err        error

	backendMsg string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("folio API error: ")
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status: %d, endpoint: %s)", e.StatusCode, e.Endpoint)
	} else {
		fmt.Fprintf(&b, " (endpoint: %s)", e.Endpoint)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Kind implements models.KindedError
func (e *APIError) Kind() models.ErrorKind { return e.kind }

func (e *APIError) Unwrap() error { return e.Err }

// BackendMessage is the "message" field of the backend's error payload, if any.
func (e *APIError) BackendMessage() string { return e.backendMsg }

// errorPayload is the backend's error body. Some routes send the code in
// "code" instead of "error".
type errorPayload struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAPIError classifies a non-2xx response body.
func NewAPIError(status int, endpoint string, body []byte) *APIError {
	e := &APIError{StatusCode: status, Endpoint: endpoint}

	var payload errorPayload
	if json.Unmarshal(body, &payload) == nil {
		e.Code = payload.Error
		if e.Code == "" {
			e.Code = payload.Code
		}
		e.Message = payload.Message
		e.backendMsg = payload.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.kind = models.KindUnauthorized
	case e.Code != "":
		e.kind = models.KindFromCode(e.Code)
	default:
		e.kind = models.KindBackend
	}
	return e
}
