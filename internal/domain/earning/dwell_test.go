package earning

import (
	"testing"
	"time"

	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestDwellVerifier(t *testing.T) {
	testCases := []struct {
		name      string
		away      time.Duration
		confirmed bool
		needed    int
	}{
		{name: "exactly the dwell time", away: 30 * time.Second, confirmed: true},
		{name: "one second short", away: 29 * time.Second, needed: 1},
		{name: "fraction of a second short", away: 29*time.Second + 999*time.Millisecond, needed: 1},
		{name: "returned immediately", away: 0, needed: 30},
		{name: "long visit", away: 10 * time.Minute, confirmed: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.NewMockClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
			v := NewDwellVerifier(30*time.Second, clock.Now)

			v.Open("1")
			require.Equal(t, DwellAwaitingReturn, v.State())

			v.Hidden()
			clock.Advance(tt.away)

			outcome, ok := v.Visible()
			require.True(t, ok)
			require.Equal(t, "1", outcome.OfferID)
			require.Equal(t, tt.confirmed, outcome.Confirmed)
			require.Equal(t, tt.needed, outcome.NeededSeconds)
			require.Equal(t, DwellIdle, v.State())
			require.Empty(t, v.ActiveOfferID())

			if tt.confirmed {
				require.NoError(t, outcome.Err())
			} else {
				require.True(t, errorx.Is(outcome.Err(), errorx.DwellTooShort))
			}
		})
	}
}

func TestDwellVerifier_RejectMessage(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	v := NewDwellVerifier(30*time.Second, clock.Now)

	v.Open("1")
	v.Hidden()
	clock.Advance(29 * time.Second)

	outcome, ok := v.Visible()
	require.True(t, ok)
	require.EqualError(t, outcome.Err(),
		"You need to stay on the reward page for at least 30 seconds (1 more seconds needed)")
}

func TestDwellVerifier_VisibleWithoutHidden(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	v := NewDwellVerifier(30*time.Second, clock.Now)

	_, ok := v.Visible()
	require.False(t, ok)

	v.Open("1")
	clock.Advance(time.Minute)
	_, ok = v.Visible()
	require.False(t, ok)
	require.Equal(t, DwellAwaitingReturn, v.State())

	// The next background/foreground pair decides the session.
	v.Hidden()
	clock.Advance(30 * time.Second)
	outcome, ok := v.Visible()
	require.True(t, ok)
	require.True(t, outcome.Confirmed)
}

func TestDwellVerifier_OpenOverrides(t *testing.T) {
	clock := testutil.NewMockClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	v := NewDwellVerifier(30*time.Second, clock.Now)

	v.Open("1")
	v.Hidden()
	clock.Advance(20 * time.Second)

	// Opening another offer discards the partial dwell of the first one.
	v.Open("2")
	require.Equal(t, "2", v.ActiveOfferID())

	_, ok := v.Visible()
	require.False(t, ok)

	v.Hidden()
	clock.Advance(15 * time.Second)
	outcome, ok := v.Visible()
	require.True(t, ok)
	require.Equal(t, "2", outcome.OfferID)
	require.False(t, outcome.Confirmed)
	require.Equal(t, 15, outcome.NeededSeconds)
}

func TestDwellVerifier_HiddenWhileIdle(t *testing.T) {
	v := NewDwellVerifier(30*time.Second, nil)

	v.Hidden()
	_, ok := v.Visible()
	require.False(t, ok)
	require.Equal(t, DwellIdle, v.State())
}
