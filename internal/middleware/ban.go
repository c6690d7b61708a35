package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

// RejectBanned stops every request of a user with an active ban.
func RejectBanned(banRepo repository.BanRepository) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		userID := xcontext.RequestUserID(ctx)
		if userID == "" {
			return nil, nil
		}

		ban, err := banRepo.GetActiveByUserID(ctx, userID, time.Now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}

			xcontext.Logger(ctx).Errorf("Cannot get active ban: %v", err)
			return nil, errorx.Unknown
		}

		if ban.ExpiresAt.Valid {
			return nil, errorx.New(errorx.Banned, "Your account is banned until %s: %s",
				ban.ExpiresAt.Time.UTC().Format(time.RFC1123), ban.Reason)
		}

		return nil, errorx.New(errorx.Banned, "Your account is banned: %s", ban.Reason)
	}
}
