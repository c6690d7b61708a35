package domain

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/spdm-lab/rewards/pkg/ws"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type realtimeTest struct {
	domain *realtimeDomain
	hub    *ws.Hub
	kv     storage.KV
	clock  *testutil.MockClock
	url    string
}

func newRealtimeTest(t *testing.T) *realtimeTest {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := ws.NewHub()
	go hub.Run(ctx)

	kv := storage.NewMemoryKV()
	clock := testutil.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	d := NewRealtimeDomain(hub, kv)
	d.interval = 10 * time.Millisecond
	d.now = clock.Now

	mockCtx := testutil.MockContext()
	r := router.New(xcontext.DB(mockCtx), xcontext.Configs(mockCtx), xcontext.Logger(mockCtx))
	r.Before(func(ctx context.Context) (context.Context, error) {
		userID := xcontext.HTTPRequest(ctx).URL.Query().Get("user")
		if userID == "" {
			return nil, nil
		}
		return xcontext.WithRequestUserID(ctx, userID), nil
	})
	r.Handle("/ws", d.ServeWebsocket)

	server := httptest.NewServer(r.Handler())
	t.Cleanup(server.Close)

	return &realtimeTest{
		domain: d,
		hub:    hub,
		kv:     kv,
		clock:  clock,
		url:    "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
	}
}

func (rt *realtimeTest) dial(t *testing.T, userID string) *websocket.Conn {
	url := rt.url
	if userID != "" {
		url += "?user=" + userID
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, payload any) model.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	event, err := common.DecodeEvent(&pubsub.Pack{Msg: msg}, payload)
	require.NoError(t, err)
	return event
}

func Test_realtimeDomain_SpinReadyOnConnect(t *testing.T) {
	rt := newRealtimeTest(t)
	conn := rt.dial(t, testutil.User2.ID)

	var ready model.SpinReadyEvent
	event := readEvent(t, conn, &ready)
	require.Equal(t, model.EventSpinReady, event.Type)
	require.True(t, ready.Ready)
}

func Test_realtimeDomain_SpinCountdown(t *testing.T) {
	rt := newRealtimeTest(t)

	cooldown := config.Default().Spin.Cooldown
	lastSpin := rt.clock.Now().Add(-cooldown + 3*time.Second)
	scoped := storage.Scoped(rt.kv, common.StorageScope(string(config.ScopeAccount), testutil.User2.ID))
	err := scoped.Set(context.Background(), earning.TriggerKey(earning.ActionSpin),
		strconv.FormatInt(lastSpin.UnixMilli(), 10))
	require.NoError(t, err)

	conn := rt.dial(t, testutil.User2.ID)

	var countdown model.SpinCountdownEvent
	event := readEvent(t, conn, &countdown)
	require.Equal(t, model.EventSpinCountdown, event.Type)
	require.Equal(t, int64(3000), countdown.RemainingMs)
	require.Equal(t, "00:00:03", countdown.Remaining)

	rt.clock.Advance(3 * time.Second)
	for {
		event = readEvent(t, conn, nil)
		if event.Type == model.EventSpinReady {
			break
		}
		require.Equal(t, model.EventSpinCountdown, event.Type)
	}
}

func Test_realtimeDomain_HandleEvent(t *testing.T) {
	rt := newRealtimeTest(t)
	alice := rt.dial(t, testutil.User2.ID)
	bob := rt.dial(t, testutil.User3.ID)
	anonymous := rt.dial(t, "")

	// Both users start with the spin ready.
	require.Equal(t, model.EventSpinReady, readEvent(t, alice, nil).Type)
	require.Equal(t, model.EventSpinReady, readEvent(t, bob, nil).Type)
	require.Eventually(t, func() bool { return rt.hub.Count() == 3 }, time.Second, 10*time.Millisecond)

	publisher := &testutil.MockPublisher{}
	ctx := testutil.MockContext()
	common.PublishEvent(ctx, publisher, common.TopicBalance, testutil.User2.ID, model.EventBalanceUpdate,
		model.BalanceUpdateEvent{UserID: testutil.User2.ID, Balance: 105, Delta: 5, Reason: "Reward: Reward 1"})
	common.PublishEvent(ctx, publisher, common.TopicEmergency, "", model.EventEmergency,
		model.EmergencyEvent{Message: "maintenance", Active: true})

	for _, p := range publisher.Published {
		rt.domain.HandleEvent(ctx, p.Topic, p.Pack, time.Now())
	}

	var balance model.BalanceUpdateEvent
	event := readEvent(t, alice, &balance)
	require.Equal(t, model.EventBalanceUpdate, event.Type)
	require.Equal(t, int64(105), balance.Balance)

	// Bob and the anonymous client never see the balance of alice.
	for _, conn := range []*websocket.Conn{alice, bob, anonymous} {
		var emergency model.EmergencyEvent
		event := readEvent(t, conn, &emergency)
		require.Equal(t, model.EventEmergency, event.Type)
		require.Equal(t, model.EmergencyEvent{Message: "maintenance", Active: true}, emergency)
	}
}

func Test_realtimeDomain_HandleEvent_Invalid(t *testing.T) {
	rt := newRealtimeTest(t)
	ctx := testutil.MockContext()

	// Neither of them reaches the hub.
	rt.domain.HandleEvent(ctx, common.TopicEmergency, &pubsub.Pack{Msg: []byte("not json")}, time.Now())
	rt.domain.HandleEvent(ctx, common.TopicBalance, &pubsub.Pack{Msg: []byte(`{"type":"balance-update"}`)}, time.Now())
	require.Equal(t, 0, rt.hub.Count())
}
