package cron

import (
	"context"
	"strconv"
	"time"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/pubsub"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/spdm-lab/rewards/pkg/xredis"
)

type PresenceCleanupCronJob struct {
	redisClient xredis.Client
	publisher   pubsub.Publisher
	now         func() time.Time
}

func NewPresenceCleanupCronJob(redisClient xredis.Client, publisher pubsub.Publisher) *PresenceCleanupCronJob {
	return &PresenceCleanupCronJob{
		redisClient: redisClient,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (job *PresenceCleanupCronJob) Do(ctx context.Context) {
	lastPingKeys, err := job.redisClient.Keys(ctx, common.RedisKeyLastPing("*"))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all last ping keys: %v", err)
		return
	}

	offlineAfter := int64(xcontext.Configs(ctx).Presence.OfflineAfter / time.Second)
	now := job.now().Unix()
	offlineKeys := []string{}
	offlineUserIDs := []string{}

	if len(lastPingKeys) > 0 {
		pingTimes, err := job.redisClient.MGet(ctx, lastPingKeys...)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get all ping times: %v", err)
			return
		}

		for i := range lastPingKeys {
			if pingTimes[i] == nil {
				xcontext.Logger(ctx).Warnf("No value at key %s", lastPingKeys[i])
				continue
			}

			lastPingString, ok := pingTimes[i].(string)
			if !ok {
				xcontext.Logger(ctx).Errorf("Invalid type of ping time: %T", pingTimes[i])
				continue
			}

			lastPing, err := strconv.ParseInt(lastPingString, 10, 64)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot convert ping time to int64: %v", err)
				continue
			}

			if now-lastPing > offlineAfter {
				offlineKeys = append(offlineKeys, lastPingKeys[i])
				offlineUserIDs = append(offlineUserIDs, common.FromRedisKeyLastPing(lastPingKeys[i]))
			}
		}
	}

	if len(offlineUserIDs) > 0 {
		if err := job.redisClient.SRem(ctx, common.RedisKeyOnlineUsers, offlineUserIDs...); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot remove online users: %v", err)
			return
		}

		if err := job.redisClient.Del(ctx, offlineKeys...); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete offline user keys: %v", err)
		}

		for _, userID := range offlineUserIDs {
			common.PublishEvent(ctx, job.publisher, common.TopicPresence, userID, model.EventPresenceUpdate,
				model.PresenceUpdateEvent{UserID: userID, Online: false})
		}
	}

	count, err := job.redisClient.SCard(ctx, common.RedisKeyOnlineUsers)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count online users: %v", err)
		return
	}

	common.PromGauges[common.OnlineUsers].WithLabelValues().Set(float64(count))
}

func (job *PresenceCleanupCronJob) RunNow() bool {
	return true
}

func (job *PresenceCleanupCronJob) Next() time.Time {
	return time.Now().Add(30 * time.Second)
}
