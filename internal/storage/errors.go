package storage

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"

	"github.com/mediaforge/mediaforge/internal/retry"
)

// Kind classifies object store failures for callers that need to decide
// between retrying, aborting, and treating a miss as success.
type Kind int

const (
	// KindUnknown covers failures with no more specific classification
	KindUnknown Kind = iota
	// KindNotFound means the addressed object or bucket does not exist
	KindNotFound
	// KindAuth means the credentials or request signature were rejected
	KindAuth
	// KindTransient means the backend was throttling or unavailable
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth_failure"
	case KindTransient:
		return "service_unavailable"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every Client method. It preserves
// the underlying store error message.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("object store %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an object store not-found error.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindNotFound
}

// IsAuthFailure reports whether err is an object store auth error.
func IsAuthFailure(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindAuth
}

// classify maps raw S3 errors onto the Kind taxonomy. All error-code and
// message matching against the store lives here; callers only ever see Kind.
func classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return KindNotFound
		case "InvalidAccessKeyId", "SignatureDoesNotMatch", "AccessDenied",
			"ExpiredToken", "InvalidToken":
			return KindAuth
		case "SlowDown", "RequestTimeout", "ServiceUnavailable", "InternalError",
			"RequestLimitExceeded", "Throttling", "ThrottlingException":
			return KindTransient
		}

		var rf awserr.RequestFailure
		if errors.As(err, &rf) {
			switch rf.StatusCode() {
			case http.StatusNotFound:
				return KindNotFound
			case http.StatusUnauthorized, http.StatusForbidden:
				return KindAuth
			case http.StatusBadGateway, http.StatusServiceUnavailable,
				http.StatusGatewayTimeout, http.StatusTooManyRequests:
				return KindTransient
			}
		}
	}

	if retry.IsTransient(err) {
		return KindTransient
	}

	// Last resort for stores that only report through message text.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such key") || strings.Contains(msg, "not found") {
		return KindNotFound
	}

	return KindUnknown
}

// retryable is the classifier handed to the retry executor. Not-found and
// auth failures are never retried.
func retryable(err error) bool {
	return classify(err) == KindTransient
}

// wrap converts a raw store error into a typed *Error for op. The original
// message is preserved through Unwrap.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}
