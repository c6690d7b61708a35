package migration

import (
	"context"

	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// migrate0001 gives an empty wallet to users registered before wallets were
// created together with the profile.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).Exec(
		"INSERT INTO wallets (user_id, balance, updated_at) " +
			"SELECT users.id, 0, users.created_at FROM users " +
			"LEFT JOIN wallets ON wallets.user_id = users.id " +
			"WHERE wallets.user_id IS NULL",
	).Error
}
