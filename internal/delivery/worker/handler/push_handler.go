package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"authgate/config"
	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/constants"
	"authgate/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// tokenValidator matches idtoken.Validate.
type tokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// PushHandler receives account events pushed by Pub/Sub and writes them to the audit log
type PushHandler struct {
	verifyPushAuth bool
	audience       string
	validateToken  tokenValidator
	logger         *slog.Logger
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Only Google signs push requests; the local publisher does not.
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.IsProduction()

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		audience:       params.Config.Worker.PushAudience,
		validateToken:  idtoken.Validate,
		logger:         params.Logger,
	}
}

// HandlePush handles incoming Pub/Sub push messages.
// Undecodable bodies get a 400; decodable events that cannot be recorded are acked with a 200.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.AccountEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse account event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))

	if err := recordEvent(ctx, reqLogger, &pushMsg, &event); err != nil {
		reqLogger.Warn("[Worker] Dropping account event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)
	}

	return c.NoContent(http.StatusOK)
}

// extractRequestID prefers message attributes, then the event body, then the
// request context, and finally generates one.
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.AccountEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

func recordEvent(ctx context.Context, logger *slog.Logger, pushMsg *PubSubMessage, event *service.AccountEvent) error {
	switch event.Type {
	case service.AccountEventRegistered, service.AccountEventLoggedIn:
	default:
		return errors.Errorf("unknown event type %q", event.Type)
	}

	if _, err := uuid.Parse(event.AccountID); err != nil {
		return errors.Wrapf(err, "invalid account id %q", event.AccountID)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "[Worker] Account event",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
		slog.String("account_id", event.AccountID),
		slog.String("username", event.Username),
		slog.String("email", event.Email),
		slog.Time("occurred_at", event.OccurredAt),
		slog.String("message_id", pushMsg.Message.MessageID),
		slog.String("publish_time", pushMsg.Message.PublishTime),
	)

	return nil
}

// verifyPubSubToken checks the OIDC token Google attaches to authenticated push requests.
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	audience := h.audience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http"
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
