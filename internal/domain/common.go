package domain

import (
	"context"
	"time"

	"github.com/spdm-lab/rewards/config"
	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/storage"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// ownerID returns who owns the cooldown and ledger state of the request. It
// is the account by default, or the browser device if configured so.
func ownerID(ctx context.Context, scope config.CooldownScope) (string, error) {
	if scope == config.ScopeDevice {
		if id := xcontext.DeviceID(ctx); id != "" {
			return id, nil
		}

		return "", errorx.New(errorx.Unauthenticated, "Unknown device")
	}

	if id := xcontext.RequestUserID(ctx); id != "" {
		return id, nil
	}

	return "", errorx.New(errorx.Unauthenticated, "You need to log in first")
}

// ownerStore returns the durable store of the request owner.
func ownerStore(ctx context.Context, kv storage.KV, scope config.CooldownScope) (storage.KV, string, error) {
	if scope == "" {
		scope = config.ScopeAccount
	}

	owner, err := ownerID(ctx, scope)
	if err != nil {
		return nil, "", err
	}

	return storage.Scoped(kv, common.StorageScope(string(scope), owner)), owner, nil
}

func requireLogin(ctx context.Context) (string, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return "", errorx.New(errorx.Unauthenticated, "You need to log in first")
	}

	return userID, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func verifyAdmin(ctx context.Context, verifier *common.GlobalRoleVerifier) error {
	if err := verifier.Verify(ctx); err != nil {
		xcontext.Logger(ctx).Debugf("Permission denied: %v", err)
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}
