package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeRateLimit, "rate limit exceeded", 429)
	assert.Equal(t, "rate_limit error (code 429): rate limit exceeded", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeParsing, 200, "failed to parse JSON: %s", "unexpected end of input")
	assert.Equal(t, ErrorTypeParsing, err.Type)
	assert.Equal(t, 200, err.Code)
	assert.Contains(t, err.Message, "unexpected end of input")
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"typed error", New(ErrorTypeAuth, "authentication required", 401), ErrorTypeAuth},
		{"wrapped typed error", fmt.Errorf("request failed: %w", New(ErrorTypeRateLimit, "throttled", 429)), ErrorTypeRateLimit},
		{"plain error", fmt.Errorf("something else"), ErrorTypeUnknown},
		{"nil", nil, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestIsTypeSeesThroughWrapping(t *testing.T) {
	base := New(ErrorTypeRateLimit, "throttled", 429)
	wrapped := fmt.Errorf("max retry attempts (5) exceeded: %w", base)

	assert.True(t, IsType(wrapped, ErrorTypeRateLimit))
	assert.True(t, IsRateLimit(wrapped))
	assert.False(t, IsAuth(wrapped))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))

	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeValidation))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(500))
	assert.True(t, IsRetryableStatusCode(503))
	assert.True(t, IsRetryableStatusCode(504))

	assert.False(t, IsRetryableStatusCode(401))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(200))
}
