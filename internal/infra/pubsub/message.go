package pubsub

import (
	"encoding/json"

	"authgate/internal/domain/service"

	"github.com/pkg/errors"
)

// eventAttributes are attached to every message for subscription filters and tracing.
func eventAttributes(event *service.AccountEvent) map[string]string {
	attributes := map[string]string{
		"event_id":   event.EventID,
		"event_type": string(event.Type),
		"account_id": event.AccountID,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}

func encodeEvent(event *service.AccountEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}
