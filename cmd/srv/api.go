package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/middleware"
	"github.com/spdm-lab/rewards/pkg/prometheus"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.loadDatabase()
	s.migrateDB()
	s.loadRedisClient()
	s.loadStorage()
	s.loadPublisher()
	s.loadIDNode()
	s.loadAuth()
	s.loadRepos()
	s.loadClients()
	s.loadDomains()
	s.loadRealtime()
	s.loadRouter()

	// Without a broker the websocket hub of this process is the only consumer.
	if s.localPubsub != nil {
		subscriber := s.localPubsub.NewSubscriber(common.Topics, s.realtimeDomain.HandleEvent)
		subscriber.Subscribe(s.ctx)
		defer subscriber.Stop(s.ctx)
	}

	go s.startPrometheus(ctx)

	cfg := xcontext.Configs(s.ctx)
	return s.serve(ctx, &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.AllowedOrigins...),
	})
}

func (s *srv) startPrometheus(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewHandler())

	err := s.serve(ctx, &http.Server{
		Addr:    xcontext.Configs(s.ctx).PrometheusServer.Address(),
		Handler: mux,
	})
	if err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot start prometheus server: %v", err)
	}
}

func (s *srv) loadRouter() {
	s.router = router.New(xcontext.DB(s.ctx), xcontext.Configs(s.ctx), xcontext.Logger(s.ctx))
	s.router.Before(middleware.IdentifyDevice(s.sessionStore))
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// These APIs are public, the request user is set when a valid token is
	// present.
	publicRouter := s.router.Branch()
	publicRouter.Before(middleware.NewAuthVerifier().WithAccessToken(s.tokenEngine).WithOptional().Middleware())
	{
		router.GET(publicRouter, "/getRewardOffers", s.rewardDomain.ListOffers)
		router.GET(publicRouter, "/getSpinStatus", s.spinDomain.GetSpinStatus)
		router.GET(publicRouter, "/getShopItems", s.shopDomain.ListItems)
		router.GET(publicRouter, "/getLeaderboard", s.leaderboardDomain.GetLeaderboard)
		router.GET(publicRouter, "/getOnlineUsers", s.presenceDomain.GetOnlineUsers)
		router.GET(publicRouter, "/getEmergencyMessage", s.emergencyDomain.Get)
		publicRouter.Handle("/ws", s.realtimeDomain.ServeWebsocket)
	}

	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier().WithAccessToken(s.tokenEngine).Middleware())
	authRouter.Before(middleware.RejectBanned(s.banRepo))
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)
		router.GET(authRouter, "/getMyTransactions", s.userDomain.GetMyTransactions)

		// Earning API
		router.POST(authRouter, "/openRewardOffer", s.rewardDomain.OpenOffer)
		router.POST(authRouter, "/changeVisibility", s.rewardDomain.ChangeVisibility)
		router.POST(authRouter, "/spin", s.spinDomain.Spin)
		router.POST(authRouter, "/afkHeartbeat", s.afkDomain.Heartbeat)
		router.POST(authRouter, "/redeemPromoCode", s.promoCodeDomain.Redeem)

		// Shop API
		router.POST(authRouter, "/purchase", s.shopDomain.Purchase)
		router.GET(authRouter, "/getMyOrders", s.shopDomain.GetMyOrders)

		// Social API
		router.GET(authRouter, "/getMyRank", s.leaderboardDomain.GetMyRank)
		router.POST(authRouter, "/ping", s.presenceDomain.Ping)
	}

	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.userRepo).Middleware())
	{
		router.GET(adminRouter, "/admin/getUsers", s.adminDomain.ListUsers)
		router.GET(adminRouter, "/admin/getStats", s.adminDomain.GetStats)
		router.POST(adminRouter, "/admin/toggleAdmin", s.adminDomain.ToggleAdmin)
		router.POST(adminRouter, "/admin/updateBalance", s.adminDomain.UpdateBalance)
		router.POST(adminRouter, "/admin/banUser", s.adminDomain.BanUser)
		router.POST(adminRouter, "/admin/unbanUser", s.adminDomain.UnbanUser)
		router.GET(adminRouter, "/admin/getBans", s.adminDomain.ListBans)
		router.POST(adminRouter, "/admin/createPromoCode", s.promoCodeDomain.Create)
		router.GET(adminRouter, "/admin/getPromoCodes", s.promoCodeDomain.GetList)
		router.POST(adminRouter, "/admin/deactivatePromoCode", s.promoCodeDomain.Deactivate)
		router.POST(adminRouter, "/admin/broadcastEmergency", s.emergencyDomain.Broadcast)
		router.POST(adminRouter, "/admin/clearEmergency", s.emergencyDomain.Clear)
	}
}
