package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Rejection kinds. Every item that does not reach the output carries exactly
// one of these in its error chain.
var (
	ErrStructural = errors.New("structural rejection")
	ErrCleaning   = errors.New("cleaning failure")
	ErrDuplicate  = errors.New("duplicate content")
	ErrQuality    = errors.New("quality rejection")
	ErrUnexpected = errors.New("unexpected failure")
)

// Reason labels used in stats and metrics.
const (
	ReasonStructural = "structural"
	ReasonCleaning   = "cleaning"
	ReasonDuplicate  = "duplicate"
	ReasonQuality    = "quality"
	ReasonRelevance  = "relevance"
	ReasonUnexpected = "unexpected"
)

// Rejection describes why a single item was dropped by the pipeline.
type Rejection struct {
	Kind   error  // one of the rejection sentinels
	Reason string // stable label, see Reason* constants
	URL    string
	Err    error // underlying cause, may be nil
}

func (r *Rejection) Error() string {
	msg := r.Kind.Error()
	if r.URL != "" {
		msg = fmt.Sprintf("%s (%s)", msg, r.URL)
	}
	if r.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, r.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (r *Rejection) Unwrap() []error {
	if r.Err == nil {
		return []error{r.Kind}
	}
	return []error{r.Kind, r.Err}
}

// Reject builds a Rejection. The reason defaults to the label of kind.
func Reject(kind error, url string, cause error) *Rejection {
	return &Rejection{Kind: kind, Reason: reasonFor(kind), URL: url, Err: cause}
}

// RejectRelevance is a quality rejection caused by the relevance gate.
func RejectRelevance(url string, cause error) *Rejection {
	return &Rejection{Kind: ErrQuality, Reason: ReasonRelevance, URL: url, Err: cause}
}

// Reason returns the stable reason label carried by err.
func Reason(err error) string {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return reasonFor(err)
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrStructural):
		return ReasonStructural
	case errors.Is(err, ErrCleaning):
		return ReasonCleaning
	case errors.Is(err, ErrDuplicate):
		return ReasonDuplicate
	case errors.Is(err, ErrQuality):
		return ReasonQuality
	default:
		return ReasonUnexpected
	}
}
