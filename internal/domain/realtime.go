package domain

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/dateutil"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/ws"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// Clients send this message to restart the spin countdown after spinning.
const watchSpinMessage = "watch-spin"

type RealtimeDomain interface {
	ServeWebsocket(ctx context.Context, w http.ResponseWriter, req *http.Request)
	HandleEvent(ctx context.Context, topic string, pack *pubsub.Pack, t time.Time)
}

type realtimeDomain struct {
	hub      *ws.Hub
	kv       storage.KV
	interval time.Duration
	now      func() time.Time
}

func NewRealtimeDomain(hub *ws.Hub, kv storage.KV) *realtimeDomain {
	return &realtimeDomain{
		hub:      hub,
		kv:       kv,
		interval: earning.CountdownInterval,
		now:      time.Now,
	}
}

func (d *realtimeDomain) ServeWebsocket(ctx context.Context, w http.ResponseWriter, req *http.Request) {
	conn, err := ws.Upgrader.Upgrade(w, req, nil)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot upgrade websocket: %v", err)
		return
	}

	userID := xcontext.RequestUserID(ctx)
	channels := []string{common.TopicPresence, common.TopicEmergency}
	if userID != "" {
		channels = append(channels, common.BalanceChannel(userID))
	}

	client := ws.NewClient(conn, userID, channels...)
	d.hub.Register(client)
	go client.WritePump()

	countdown := d.watchSpin(ctx, client)
	defer func() {
		if countdown != nil {
			countdown.Stop()
		}
		d.hub.Unregister(client)
	}()

	err = client.ReadPump(func(msg []byte) {
		var event model.Event
		if err := json.Unmarshal(msg, &event); err != nil {
			xcontext.Logger(ctx).Debugf("Invalid websocket message: %v", err)
			return
		}

		if event.Type == watchSpinMessage {
			if countdown != nil {
				countdown.Stop()
			}
			countdown = d.watchSpin(ctx, client)
		}
	})
	if err != nil {
		xcontext.Logger(ctx).Debugf("Websocket of %s closed: %v", userID, err)
	}
}

// watchSpin pushes the remaining spin cooldown every tick and a single
// spin-ready event once the cooldown is over. Anonymous clients get nothing.
func (d *realtimeDomain) watchSpin(ctx context.Context, client *ws.Client) *earning.Countdown {
	kv, _, err := ownerStore(ctx, d.kv, xcontext.Configs(ctx).Reward.Scope)
	if err != nil {
		return nil
	}

	tracker := earning.NewCooldownTracker(kv, d.now)
	cooldown := xcontext.Configs(ctx).Spin.Cooldown

	return earning.StartCountdown(
		d.interval,
		func() time.Duration {
			return tracker.CanTrigger(ctx, earning.ActionSpin, cooldown).Remaining
		},
		func(remaining time.Duration) {
			d.push(ctx, client, model.EventSpinCountdown, model.SpinCountdownEvent{
				RemainingMs: remaining.Milliseconds(),
				Remaining:   dateutil.FormatClock(remaining),
			})
		},
		func() {
			d.push(ctx, client, model.EventSpinReady, model.SpinReadyEvent{Ready: true})
		},
	)
}

func (d *realtimeDomain) push(ctx context.Context, client *ws.Client, eventType string, payload any) {
	msg, err := common.EncodeEvent(eventType, payload)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode event %s: %v", eventType, err)
		return
	}

	if !client.Send(msg) {
		xcontext.Logger(ctx).Debugf("Drop event %s of %s", eventType, client.UserID)
	}
}

// HandleEvent fans a published event out to the websocket channel of its
// topic. Balance events only reach the owner of the balance.
func (d *realtimeDomain) HandleEvent(ctx context.Context, topic string, pack *pubsub.Pack, t time.Time) {
	event, err := common.DecodeEvent(pack, nil)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid event on topic %s: %v", topic, err)
		return
	}

	channel := topic
	if topic == common.TopicBalance {
		if len(pack.Key) == 0 {
			xcontext.Logger(ctx).Errorf("Balance event %s has no user", event.Type)
			return
		}
		channel = common.BalanceChannel(string(pack.Key))
	}

	d.hub.BroadcastByChannel(channel, pack.Msg)
}
