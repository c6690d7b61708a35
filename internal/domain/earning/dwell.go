package earning

import (
	"sync"
	"time"

	"github.com/spdm-lab/rewards/pkg/errorx"
)

type DwellState int

const (
	DwellIdle DwellState = iota
	DwellAwaitingReturn
)

type DwellOutcome struct {
	OfferID     string
	Confirmed   bool
	AwaySeconds int

	// NeededSeconds is how many more seconds were required, it is zero when
	// the dwell is confirmed.
	NeededSeconds int
	MinSeconds    int
}

func (o DwellOutcome) Err() error {
	if o.Confirmed {
		return nil
	}

	return errorx.New(errorx.DwellTooShort,
		"You need to stay on the reward page for at least %d seconds (%d more seconds needed)",
		o.MinSeconds, o.NeededSeconds)
}

// DwellVerifier holds the claim session of one owner. Only one offer can be
// awaited at a time, opening another offer replaces the current session.
type DwellVerifier struct {
	mutex    sync.Mutex
	minDwell time.Duration
	now      func() time.Time

	state         DwellState
	activeOfferID string
	awayStart     time.Time
	away          bool
}

func NewDwellVerifier(minDwell time.Duration, now func() time.Time) *DwellVerifier {
	if now == nil {
		now = time.Now
	}

	return &DwellVerifier{minDwell: minDwell, now: now}
}

// Open starts awaiting offerID. The dwell timer only starts once the
// application goes to the background.
func (v *DwellVerifier) Open(offerID string) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.state = DwellAwaitingReturn
	v.activeOfferID = offerID
	v.awayStart = time.Time{}
	v.away = false
}

// Hidden records the time the application lost the foreground.
func (v *DwellVerifier) Hidden() {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if v.state != DwellAwaitingReturn {
		return
	}

	v.awayStart = v.now()
	v.away = true
}

// Visible decides the session if the application was in the background
// since the offer was opened, then goes back to idle. Otherwise it returns
// false and the session keeps waiting.
func (v *DwellVerifier) Visible() (DwellOutcome, bool) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	if v.state != DwellAwaitingReturn || !v.away {
		return DwellOutcome{}, false
	}

	minSeconds := int(v.minDwell / time.Second)
	awaySeconds := int(v.now().Sub(v.awayStart) / time.Second)
	outcome := DwellOutcome{
		OfferID:     v.activeOfferID,
		AwaySeconds: awaySeconds,
		MinSeconds:  minSeconds,
	}

	if awaySeconds >= minSeconds {
		outcome.Confirmed = true
	} else {
		outcome.NeededSeconds = minSeconds - awaySeconds
	}

	v.state = DwellIdle
	v.activeOfferID = ""
	v.awayStart = time.Time{}
	v.away = false
	return outcome, true
}

func (v *DwellVerifier) State() DwellState {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.state
}

func (v *DwellVerifier) ActiveOfferID() string {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.activeOfferID
}
