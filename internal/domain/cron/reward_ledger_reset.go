package cron

import (
	"context"
	"strings"
	"time"

	"github.com/spdm-lab/rewards/internal/domain/earning"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// RewardLedgerResetCronJob clears the daily ledgers whose day is over, in
// addition to the check done whenever a ledger is read.
type RewardLedgerResetCronJob struct {
	kv       storage.KV
	interval time.Duration
	now      func() time.Time
}

func NewRewardLedgerResetCronJob(kv storage.KV, interval time.Duration) *RewardLedgerResetCronJob {
	return &RewardLedgerResetCronJob{kv: kv, interval: interval, now: time.Now}
}

func (job *RewardLedgerResetCronJob) Do(ctx context.Context) {
	suffix := ":" + earning.KeyLastRewardReset
	keys, err := job.kv.Keys(ctx, "*"+suffix)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reward ledger keys: %v", err)
		return
	}

	loc := xcontext.Configs(ctx).Reward.Location()
	count := 0
	for _, key := range keys {
		scope := strings.TrimSuffix(key, suffix)
		ledger := earning.NewDailyLedger(storage.Scoped(job.kv, scope), 0, loc, job.now)

		reset, err := ledger.CheckReset(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reset reward ledger %s: %v", scope, err)
			continue
		}

		if reset {
			count++
		}
	}

	if count > 0 {
		xcontext.Logger(ctx).Infof("Reset %d reward ledgers", count)
	}
}

func (job *RewardLedgerResetCronJob) RunNow() bool {
	return true
}

func (job *RewardLedgerResetCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
