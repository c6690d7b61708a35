package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spdm-lab/rewards/internal/domain/cron"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadPublisher()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewRewardLedgerResetCronJob(s.kv, xcontext.Configs(s.ctx).Reward.ResetInterval))
	cronJobManager.Register(cron.NewPresenceCleanupCronJob(s.redisClient, s.publisher))
	cronJobManager.Register(cron.NewLiftExpiredBanCronJob(s.banRepo, s.userRepo))

	// Jobs read the database and configs from the context they run with.
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cronJobManager.Start(ctx)
	return nil
}
