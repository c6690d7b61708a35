package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/middleware"
	"github.com/spdm-lab/rewards/pkg/kafka"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRealtime(*cli.Context) error {
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		return errors.New("realtime needs kafka, the api serves websockets by itself without it")
	}

	s.loadRedisClient()
	s.loadStorage()
	s.loadAuth()
	s.loadRealtime()

	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID, []string{cfg.Kafka.Addr}, common.Topics, s.realtimeDomain.HandleEvent)
	if err != nil {
		return err
	}
	subscriber.Subscribe(s.ctx)
	defer subscriber.Stop(s.ctx)

	r := router.New(nil, cfg, xcontext.Logger(s.ctx))
	r.Before(middleware.IdentifyDevice(s.sessionStore))
	r.Before(middleware.NewAuthVerifier().WithAccessToken(s.tokenEngine).WithOptional().Middleware())
	r.AddCloser(middleware.Logger())
	r.Handle("/ws", s.realtimeDomain.ServeWebsocket)

	return s.serve(ctx, &http.Server{
		Addr:    cfg.RealtimeServer.Address(),
		Handler: r.Handler(cfg.ApiServer.AllowedOrigins...),
	})
}
