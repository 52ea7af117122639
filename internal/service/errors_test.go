package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/pairs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ServiceError
		want string
	}{
		{
			name: "with cause",
			err:  &ServiceError{Service: "session", Op: "create", Err: errors.New("scheduler stopped")},
			want: "session service create operation failed: scheduler stopped",
		},
		{
			name: "without cause",
			err:  &ServiceError{Service: "session", Op: "restart"},
			want: "session service restart operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestServiceErrorKeepsCauseReachable(t *testing.T) {
	err := NewServiceError("session", "select_card", fmt.Errorf("engine: %w", domain.ErrUnknownCard))

	// Callers wrap once more on the way up; both checks must still see through it.
	wrapped := fmt.Errorf("handler: %w", err)

	assert.ErrorIs(t, wrapped, domain.ErrUnknownCard)
	assert.NotErrorIs(t, wrapped, ErrSessionNotFound)

	var serviceErr *ServiceError
	require.ErrorAs(t, wrapped, &serviceErr)
	assert.Equal(t, "select_card", serviceErr.Op)
}

func TestSentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrSessionNotFound, ErrTooManySessions)
	assert.NotErrorIs(t, NewServiceError("session", "create", ErrTooManySessions), ErrSessionNotFound)
}
