package worker

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"authgate/config"
	"authgate/internal/delivery/worker/handler"
	"authgate/internal/domain/service"
	"authgate/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is written by the server goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestWorker_ReceivesLocalPublisherEvents(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	e := newEcho(cfg, logger, handler.NewPushHandler(handler.PushHandlerParams{Config: cfg, Logger: logger}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	publisher := pubsub.NewLocalHTTPPublisher(srv.URL+"/push", logger)
	accountID := uuid.NewString()

	err := publisher.PublishAccountEvent(context.Background(), &service.AccountEvent{
		RequestID:  "req-e2e",
		EventID:    uuid.NewString(),
		Type:       service.AccountEventLoggedIn,
		AccountID:  accountID,
		Username:   "jane_doe",
		Email:      "jane@x.com",
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"[Worker] Account event"`)
	assert.Contains(t, buf.String(), accountID)
	assert.Contains(t, buf.String(), `"request_id":"req-e2e"`)
}

func TestWorker_Health(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	logger := slog.New(slog.DiscardHandler)

	e := newEcho(cfg, logger, handler.NewPushHandler(handler.PushHandlerParams{Config: cfg, Logger: logger}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
