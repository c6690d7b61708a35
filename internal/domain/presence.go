package domain

import (
	"context"
	"strconv"
	"time"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/spdm-lab/rewards/pkg/xredis"
)

type PresenceDomain interface {
	Ping(context.Context, *model.PingRequest) (*model.PingResponse, error)
	GetOnlineUsers(context.Context, *model.GetOnlineUsersRequest) (*model.GetOnlineUsersResponse, error)
}

type presenceDomain struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
	publisher   pubsub.Publisher
	now         func() time.Time
}

func NewPresenceDomain(
	userRepo repository.UserRepository,
	redisClient xredis.Client,
	publisher pubsub.Publisher,
) *presenceDomain {
	return &presenceDomain{
		userRepo:    userRepo,
		redisClient: redisClient,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (d *presenceDomain) Ping(ctx context.Context, req *model.PingRequest) (*model.PingResponse, error) {
	userID, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	lastPing := strconv.FormatInt(d.now().Unix(), 10)
	if err := d.redisClient.Set(ctx, common.RedisKeyLastPing(userID), lastPing); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set last ping: %v", err)
		return nil, errorx.Unknown
	}

	added, err := d.redisClient.SAdd(ctx, common.RedisKeyOnlineUsers, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add online user: %v", err)
		return nil, errorx.Unknown
	}

	if added > 0 {
		common.PublishEvent(ctx, d.publisher, common.TopicPresence, userID, model.EventPresenceUpdate,
			model.PresenceUpdateEvent{UserID: userID, Online: true})

		if count, err := d.redisClient.SCard(ctx, common.RedisKeyOnlineUsers); err == nil {
			common.PromGauges[common.OnlineUsers].WithLabelValues().Set(float64(count))
		}
	}

	return &model.PingResponse{}, nil
}

func (d *presenceDomain) GetOnlineUsers(
	ctx context.Context, req *model.GetOnlineUsersRequest,
) (*model.GetOnlineUsersResponse, error) {
	userIDs, err := d.redisClient.SMembers(ctx, common.RedisKeyOnlineUsers)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get online users: %v", err)
		return nil, errorx.Unknown
	}

	users := []model.OnlineUser{}
	if len(userIDs) == 0 {
		return &model.GetOnlineUsersResponse{Users: users}, nil
	}

	records, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	for _, u := range records {
		users = append(users, model.OnlineUser{ID: u.ID, Username: u.Username})
	}

	return &model.GetOnlineUsersResponse{Users: users}, nil
}
