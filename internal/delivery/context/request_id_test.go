package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "", want: false},
		{id: "abc-123_x.y:z", want: true},
		{id: "6f1c2a8e-3b7d-4f0e-9a51-2d4c8b7e1f03", want: true},
		{id: "has space", want: false},
		{id: "line\nbreak", want: false},
		{id: strings.Repeat("a", maxRequestIDLength), want: true},
		{id: strings.Repeat("a", maxRequestIDLength+1), want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidRequestID(tt.id), "id %q", tt.id)
	}
}

func TestGetRequestID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.NotEmpty(t, GetRequestID(c))

	SetRequestID(c, "req-1")
	assert.Equal(t, "req-1", GetRequestID(c))
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Empty(t, GetRequestIDFromContext(ctx))
	assert.Nil(t, GetLogger(ctx))
	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))

	scoped := fallback.With(slog.String("request_id", "req-1"))
	ctx = WithLogger(WithRequestID(ctx, "req-1"), scoped)

	assert.Equal(t, "req-1", GetRequestIDFromContext(ctx))
	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))
}
