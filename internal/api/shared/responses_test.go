package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/pairs/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, traceID string) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()

	ctx, buf := logger.NewLogCaptureContext(t)
	if traceID != "" {
		ctx = context.WithValue(ctx, TraceIDKey, traceID)
	}
	return httptest.NewRequest(http.MethodGet, "/api/games", nil).WithContext(ctx), buf
}

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		data         interface{}
		expectedBody string
	}{
		{
			name:         "object",
			status:       http.StatusCreated,
			data:         map[string]interface{}{"game_id": "abc", "pair_count": 8},
			expectedBody: `{"game_id":"abc","pair_count":8}`,
		},
		{name: "empty object", status: http.StatusOK, data: map[string]interface{}{}, expectedBody: `{}`},
		{name: "nil", status: http.StatusOK, data: nil, expectedBody: `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := newRequest(t, "")
			w := httptest.NewRecorder()

			RespondWithJSON(w, req, tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	req, buf := newRequest(t, "")
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	logger.AssertLogContains(t, buf, "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	req, _ := newRequest(t, "test-trace-id")
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
	assert.NotContains(t, w.Body.String(), "400", "the status code is not serialized")
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req, _ := newRequest(t, "")
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Unauthorized", response.Error)
	assert.Empty(t, response.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		message       string
		err           error
		elevate       bool
		expectedLevel string
	}{
		{
			name:          "server error",
			status:        http.StatusInternalServerError,
			message:       "An unexpected error occurred",
			err:           errors.New("scheduler stopped"),
			expectedLevel: "ERROR",
		},
		{
			name:          "client error",
			status:        http.StatusBadRequest,
			message:       "Invalid card",
			err:           errors.New("unknown card"),
			expectedLevel: "DEBUG",
		},
		{
			name:          "elevated client error",
			status:        http.StatusForbidden,
			message:       "Token does not grant access to this game",
			err:           errors.New("wrong game"),
			elevate:       true,
			expectedLevel: "WARN",
		},
		{
			name:          "session limit",
			status:        http.StatusServiceUnavailable,
			message:       "Too many active games",
			err:           errors.New("too many sessions"),
			expectedLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, buf := newRequest(t, "test-trace-id")
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevate {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.status, tc.message, tc.err, opts...)

			assert.Equal(t, tc.status, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.Equal(t, "test-trace-id", response.TraceID)
			assert.NotContains(t, w.Body.String(), tc.err.Error())

			logger.AssertLogField(t, buf, "level", tc.expectedLevel)
			logger.AssertLogField(t, buf, "trace_id", "test-trace-id")
			logger.AssertLogField(t, buf, "user_message", tc.message)
			logger.AssertLogContains(t, buf, "error_type")
		})
	}
}

func TestRespondWithErrorAndLogRedactsSecrets(t *testing.T) {
	req, buf := newRequest(t, "")
	w := httptest.NewRecorder()

	err := errors.New("token rejected: secret=hunter2hunter2 at /srv/pairs/internal/game/engine.go")
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", err)

	logs := buf.String()
	assert.NotContains(t, logs, "hunter2hunter2")
	assert.NotContains(t, logs, "engine.go")
	assert.NotContains(t, w.Body.String(), "token rejected")
}
