package cron

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/internal/domain"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type LiftExpiredBanCronJob struct {
	banRepo  repository.BanRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewLiftExpiredBanCronJob(
	banRepo repository.BanRepository,
	userRepo repository.UserRepository,
) *LiftExpiredBanCronJob {
	return &LiftExpiredBanCronJob{
		banRepo:  banRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (job *LiftExpiredBanCronJob) Do(ctx context.Context) {
	now := job.now()
	bans, err := job.banRepo.GetExpired(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get expired bans: %v", err)
		return
	}

	for _, ban := range bans {
		if err := domain.LiftBan(ctx, job.banRepo, job.userRepo, ban.UserID, now); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot lift the ban of %s: %v", ban.UserID, err)
			continue
		}

		xcontext.Logger(ctx).Infof("Ban of %s expired", ban.UserID)
	}
}

func (job *LiftExpiredBanCronJob) RunNow() bool {
	return false
}

func (job *LiftExpiredBanCronJob) Next() time.Time {
	return time.Now().Add(time.Minute)
}
