// Package types defines the request and response types for the API.
package types

// Slug is a type for the slug field in the response
// It is mainly used for the client to understand the type of the response
type Slug string

// Response slugs
const (
	SuccessSlug      Slug = "success"
	ErrorSlug        Slug = "error"
	InvalidInputSlug Slug = "invalid-input"
	NotFoundSlug     Slug = "not-found"
	ServerErrorSlug  Slug = "server-error"
)

// SlugResponse is the response type for the API. Warning is set on
// operations that succeeded but left a state needing operator attention;
// Retryable hints that the whole request can be safely resubmitted.
type SlugResponse struct {
	Slug      Slug        `json:"slug"`
	Error     string      `json:"error,omitempty"`
	Warning   string      `json:"warning,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrInvalidInput returns a SlugResponse with the InvalidInputSlug and the error message
func ErrInvalidInput(msg string) SlugResponse {
	return SlugResponse{
		Slug:  InvalidInputSlug,
		Error: msg,
	}
}

// ErrNotFound returns a SlugResponse with the NotFoundSlug and the error message
func ErrNotFound(msg string) SlugResponse {
	return SlugResponse{
		Slug:  NotFoundSlug,
		Error: msg,
	}
}

// ErrServer returns a SlugResponse with the ServerErrorSlug and the error message
func ErrServer(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ServerErrorSlug,
		Error: msg,
	}
}

// ErrServerRetryable marks a server error as safe to retry as a whole
func ErrServerRetryable(msg string) SlugResponse {
	return SlugResponse{
		Slug:      ServerErrorSlug,
		Error:     msg,
		Retryable: true,
	}
}

// Success returns a SlugResponse with the SuccessSlug and the data
func Success(data interface{}) SlugResponse {
	return SlugResponse{
		Slug: SuccessSlug,
		Data: data,
	}
}

// SuccessWithWarning returns a success response carrying a warning string
func SuccessWithWarning(data interface{}, warning string) SlugResponse {
	return SlugResponse{
		Slug:    SuccessSlug,
		Warning: warning,
		Data:    data,
	}
}

// JobResponse is the submission outcome returned to the caller
type JobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
