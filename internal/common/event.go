package common

import (
	"context"
	"encoding/json"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// Topics double as websocket channels. The balance channel of a user is
// BalanceChannel(userID).
const (
	TopicBalance   = "balance"
	TopicPresence  = "presence"
	TopicEmergency = "emergency"
)

var Topics = []string{TopicBalance, TopicPresence, TopicEmergency}

func BalanceChannel(userID string) string {
	return TopicBalance + ":" + userID
}

// PublishEvent sends an event whose data is the struct payload. A failure is
// only logged, realtime events are best effort.
func PublishEvent(
	ctx context.Context,
	publisher pubsub.Publisher,
	topic, key, eventType string,
	payload any,
) {
	if publisher == nil {
		return
	}

	b, err := EncodeEvent(eventType, payload)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event %s: %v", eventType, err)
		return
	}

	if err := publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: b}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish event %s: %v", eventType, err)
	}
}

// EncodeEvent builds the json message pushed to websocket clients.
func EncodeEvent(eventType string, payload any) ([]byte, error) {
	return json.Marshal(model.Event{Type: eventType, Data: structs.Map(payload)})
}

// DecodeEvent parses a published pack and decodes its data into payload.
func DecodeEvent(pack *pubsub.Pack, payload any) (model.Event, error) {
	var event model.Event
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		return model.Event{}, err
	}

	if payload != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           payload,
		})
		if err != nil {
			return model.Event{}, err
		}

		if err := decoder.Decode(event.Data); err != nil {
			return model.Event{}, err
		}
	}

	return event, nil
}
