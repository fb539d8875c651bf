package status

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := Errorf(CampaignNotFound, "campaign '%s' does not exist", "c1")
	assert.Equal(t, CampaignNotFound, CodeOf(err))
	assert.Equal(t, Unknown, CodeOf(fmt.Errorf("plain error")))
	assert.Equal(t, Unknown, CodeOf(nil))
}

func TestCodeOfWrapped(t *testing.T) {
	inner := New(MVCCConflict, "commit rejected")
	wrapped := errors.WithMessage(inner, "submit failed")
	assert.Equal(t, MVCCConflict, CodeOf(wrapped))
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := WithCause(ConnectionFailure, cause, "failed to connect gateway")
	assert.Equal(t, ConnectionFailure, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ConnectionFailure")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRetryable(t *testing.T) {
	assert.True(t, MVCCConflict.Retryable())
	assert.False(t, CampaignNotFound.Retryable())
	assert.False(t, ConnectionFailure.Retryable())
	assert.False(t, StoreUnavailable.Retryable())
}
