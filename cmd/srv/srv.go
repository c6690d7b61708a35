package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/sessions"
	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/client"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/domain"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/migration"
	"github.com/spdm-lab/rewards/pkg/authenticator"
	"github.com/spdm-lab/rewards/pkg/kafka"
	"github.com/spdm-lab/rewards/pkg/logger"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/ws"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/spdm-lab/rewards/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient  xredis.Client
	kv           storage.KV
	publisher    pubsub.Publisher
	localPubsub  *pubsub.Local
	node         *snowflake.Node
	tokenEngine  authenticator.TokenEngine[model.AccessToken]
	sessionStore sessions.Store
	hub          *ws.Hub

	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.BalanceTransactionRepository
	leaderboardRepo repository.LeaderboardRepository
	promoCodeRepo   repository.PromoCodeRepository
	banRepo         repository.BanRepository
	emergencyRepo   repository.EmergencyRepository
	orderRepo       repository.OrderRepository

	balanceMutator    client.BalanceMutator
	promoCodeRedeemer client.PromoCodeRedeemer
	roleVerifier      *common.GlobalRoleVerifier

	userDomain        domain.UserDomain
	rewardDomain      domain.RewardDomain
	spinDomain        domain.SpinDomain
	afkDomain         domain.AfkDomain
	promoCodeDomain   domain.PromoCodeDomain
	shopDomain        domain.ShopDomain
	leaderboardDomain domain.LeaderboardDomain
	presenceDomain    domain.PresenceDomain
	adminDomain       domain.AdminDomain
	emergencyDomain   domain.EmergencyDomain
	realtimeDomain    domain.RealtimeDomain

	router *router.Router
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.Logger.Level))
	return nil
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	level := gormlogger.Silent
	if cfg.LogSQL {
		level = gormlogger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       cfg.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadStorage() {
	s.kv = storage.NewRedisKV(s.redisClient)
}

// loadPublisher uses kafka when a broker is configured, otherwise events are
// delivered inside the process.
func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr == "" {
		s.localPubsub = pubsub.NewLocal()
		s.publisher = s.localPubsub
		return
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, []string{cfg.Addr})
	if err != nil {
		panic(err)
	}
	s.publisher = publisher
}

func (s *srv) loadIDNode() {
	var err error
	s.node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadAuth() {
	cfg := xcontext.Configs(s.ctx)
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](cfg.Auth)

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options.HttpOnly = true
	store.Options.MaxAge = 0
	store.Options.SameSite = http.SameSiteLaxMode
	s.sessionStore = store
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.walletRepo = repository.NewWalletRepository()
	s.transactionRepo = repository.NewBalanceTransactionRepository()
	s.leaderboardRepo = repository.NewLeaderboardRepository()
	s.promoCodeRepo = repository.NewPromoCodeRepository()
	s.banRepo = repository.NewBanRepository()
	s.emergencyRepo = repository.NewEmergencyRepository()
	s.orderRepo = repository.NewOrderRepository()
}

func (s *srv) loadClients() {
	s.balanceMutator = client.NewBalanceCaller(
		s.walletRepo, s.transactionRepo, s.userRepo, s.leaderboardRepo, s.publisher, s.node)
	s.promoCodeRedeemer = client.NewPromoCodeCaller(s.promoCodeRepo, s.balanceMutator)
	s.roleVerifier = common.NewGlobalRoleVerifier(s.userRepo)
}

func (s *srv) loadDomains() {
	s.userDomain = domain.NewUserDomain(s.userRepo, s.walletRepo, s.transactionRepo)
	s.rewardDomain = domain.NewRewardDomain(s.kv, s.balanceMutator)
	s.spinDomain = domain.NewSpinDomain(s.kv, s.balanceMutator)
	s.afkDomain = domain.NewAfkDomain(s.kv, s.balanceMutator)
	s.promoCodeDomain = domain.NewPromoCodeDomain(s.promoCodeRepo, s.promoCodeRedeemer, s.roleVerifier)
	s.shopDomain = domain.NewShopDomain(s.orderRepo, s.balanceMutator)
	s.leaderboardDomain = domain.NewLeaderboardDomain(s.leaderboardRepo, s.redisClient)
	s.presenceDomain = domain.NewPresenceDomain(s.userRepo, s.redisClient, s.publisher)
	s.adminDomain = domain.NewAdminDomain(
		s.userRepo, s.walletRepo, s.banRepo, s.balanceMutator, s.redisClient, s.roleVerifier)
	s.emergencyDomain = domain.NewEmergencyDomain(s.emergencyRepo, s.publisher, s.roleVerifier)
}

func (s *srv) loadRealtime() {
	s.hub = ws.NewHub()
	go s.hub.Run(s.ctx)
	s.realtimeDomain = domain.NewRealtimeDomain(s.hub, s.kv)
}

// serve blocks until ctx is done, then gives the server some time to finish
// the running requests.
func (s *srv) serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		xcontext.Logger(s.ctx).Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	xcontext.Logger(s.ctx).Infof("Stopping server on %s", server.Addr)
	return server.Shutdown(shutdownCtx)
}
