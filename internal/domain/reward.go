package domain

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"golang.org/x/exp/slices"
)

type RewardDomain interface {
	ListOffers(context.Context, *model.ListOffersRequest) (*model.ListOffersResponse, error)
	OpenOffer(context.Context, *model.OpenOfferRequest) (*model.OpenOfferResponse, error)
	ChangeVisibility(context.Context, *model.ChangeVisibilityRequest) (*model.ChangeVisibilityResponse, error)
}

const ledgerClaimAttempts = 3

type rewardDomain struct {
	kv             storage.KV
	balanceMutator client.BalanceMutator
	guard          *common.InFlightGuard
	now            func() time.Time

	// sessions holds the dwell verifier of every owner who opened an offer.
	sessions *xsync.MapOf[string, *earning.DwellVerifier]
}

func NewRewardDomain(kv storage.KV, balanceMutator client.BalanceMutator) *rewardDomain {
	return &rewardDomain{
		kv:             kv,
		balanceMutator: balanceMutator,
		guard:          common.NewInFlightGuard(),
		now:            time.Now,
		sessions:       xsync.NewMapOf[*earning.DwellVerifier](),
	}
}

func (d *rewardDomain) ledger(ctx context.Context) (*earning.DailyLedger, string, error) {
	cfg := xcontext.Configs(ctx).Reward
	kv, owner, err := ownerStore(ctx, d.kv, cfg.Scope)
	if err != nil {
		return nil, "", err
	}

	return earning.NewDailyLedger(kv, cfg.DailyCap, cfg.Location(), d.now), owner, nil
}

func findOffer(offers []config.RewardOffer, id string) (config.RewardOffer, bool) {
	i := slices.IndexFunc(offers, func(o config.RewardOffer) bool { return o.ID == id })
	if i < 0 {
		return config.RewardOffer{}, false
	}

	return offers[i], true
}

func (d *rewardDomain) ListOffers(
	ctx context.Context, req *model.ListOffersRequest,
) (*model.ListOffersResponse, error) {
	ledger, owner, err := d.ledger(ctx)
	if err != nil {
		return nil, err
	}

	state, err := ledger.State(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	offers := []model.RewardOffer{}
	for _, o := range xcontext.Configs(ctx).Reward.Offers {
		offers = append(offers, model.RewardOffer{
			ID:      o.ID,
			Name:    o.Name,
			URL:     o.URL,
			Coins:   o.Coins,
			Claimed: state.Claimed[o.ID],
		})
	}

	resp := &model.ListOffersResponse{
		Offers:       offers,
		TotalClaimed: state.Total,
		DailyCap:     ledger.DailyCap(),
	}

	if verifier, ok := d.sessions.Load(owner); ok {
		resp.ActiveOfferID = verifier.ActiveOfferID()
	}

	return resp, nil
}

func (d *rewardDomain) OpenOffer(
	ctx context.Context, req *model.OpenOfferRequest,
) (*model.OpenOfferResponse, error) {
	if _, err := requireLogin(ctx); err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Reward
	offer, ok := findOffer(cfg.Offers, req.OfferID)
	if !ok {
		return nil, errorx.New(errorx.NotFound, "Not found reward")
	}

	ledger, owner, err := d.ledger(ctx)
	if err != nil {
		return nil, err
	}

	if err := ledger.CanClaim(ctx, offer.ID, offer.Coins); err != nil {
		if _, ok := err.(errorx.Error); ok {
			xcontext.Logger(ctx).Debugf("Reward %s of %s is rejected: %v", offer.ID, owner, err)
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot check reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	verifier, _ := d.sessions.LoadOrStore(owner, earning.NewDwellVerifier(cfg.DwellTime, d.now))
	verifier.Open(offer.ID)

	return &model.OpenOfferResponse{URL: offer.URL}, nil
}

func (d *rewardDomain) ChangeVisibility(
	ctx context.Context, req *model.ChangeVisibilityRequest,
) (*model.ChangeVisibilityResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	ledger, owner, err := d.ledger(ctx)
	if err != nil {
		return nil, err
	}

	resp := &model.ChangeVisibilityResponse{}
	verifier, ok := d.sessions.Load(owner)
	if ok {
		if req.Hidden {
			verifier.Hidden()
		} else if outcome, decided := verifier.Visible(); decided {
			// A decided session is over, the next open starts a new one.
			d.sessions.Delete(owner)

			claimed, err := d.claim(ctx, ledger, owner, userID, outcome)
			if err != nil {
				return nil, err
			}

			resp.Claimed = claimed
		}
	}

	total, err := ledger.TotalClaimedToday(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	resp.TotalClaimed = total
	return resp, nil
}

// claim credits a confirmed dwell. The ledger is only written after the
// balance mutation succeeded.
func (d *rewardDomain) claim(
	ctx context.Context, ledger *earning.DailyLedger, owner, userID string, outcome earning.DwellOutcome,
) (*model.ClaimResult, error) {
	claimCounter := common.PromCounters[common.RewardClaimTotal]
	if !outcome.Confirmed {
		claimCounter.WithLabelValues("too_short").Inc()
		return nil, outcome.Err()
	}

	offer, ok := findOffer(xcontext.Configs(ctx).Reward.Offers, outcome.OfferID)
	if !ok {
		return nil, errorx.New(errorx.NotFound, "Not found reward")
	}

	release, err := d.guard.Acquire(owner)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := ledger.CanClaim(ctx, offer.ID, offer.Coins); err != nil {
		if errx, ok := err.(errorx.Error); ok {
			claimCounter.WithLabelValues("rejected").Inc()
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot check reward ledger: %v", err)
		return nil, errorx.Unknown
	}

	newBalance, err := d.balanceMutator.UpdateBalance(ctx, userID, int64(offer.Coins), client.ReasonReward(offer.Name))
	if err != nil {
		claimCounter.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &model.ClaimResult{
		OfferID:    offer.ID,
		Coins:      offer.Coins,
		NewBalance: newBalance,
	}

	// The coins are credited at this point.
	if err := commitClaim(ctx, ledger, offer); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit reward %s of %s to the ledger: %v", offer.ID, owner, err)
		claimCounter.WithLabelValues("unrecorded").Inc()
		result.Warning = "Your coins were credited, but the claim could not be recorded"
		return result, nil
	}

	claimCounter.WithLabelValues("claimed").Inc()
	return result, nil
}

func commitClaim(ctx context.Context, ledger *earning.DailyLedger, offer config.RewardOffer) error {
	var err error
	for i := 0; i < ledgerClaimAttempts; i++ {
		if err = ledger.Claim(ctx, offer.ID, offer.Coins); err == nil {
			return nil
		}

		// A rejection will not change on retry.
		if _, ok := err.(errorx.Error); ok {
			return err
		}
	}

	return err
}
