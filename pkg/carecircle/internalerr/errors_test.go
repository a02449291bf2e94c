package internalerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectionUnwrap(t *testing.T) {
	cause := errors.New("content too short")
	err := fmt.Errorf("process item: %w", Reject(ErrCleaning, "https://example.vn/a", cause))

	assert.ErrorIs(t, err, ErrCleaning)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrQuality)
	assert.Equal(t, ReasonCleaning, Reason(err))
	assert.Contains(t, err.Error(), "https://example.vn/a")
}

func TestRelevanceIsQualityKind(t *testing.T) {
	err := RejectRelevance("https://example.vn/b", nil)

	assert.ErrorIs(t, err, ErrQuality)
	assert.Equal(t, ReasonRelevance, Reason(err))
	assert.Equal(t, "quality rejection (https://example.vn/b)", err.Error())
}

func TestReasonForBareErrors(t *testing.T) {
	assert.Equal(t, ReasonDuplicate, Reason(ErrDuplicate))
	assert.Equal(t, ReasonStructural, Reason(fmt.Errorf("wrap: %w", ErrStructural)))
	assert.Equal(t, ReasonUnexpected, Reason(errors.New("boom")))
}
