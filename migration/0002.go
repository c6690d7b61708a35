package migration

import (
	"context"

	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// migrate0002 recomputes the lifetime earnings from the balance history,
// admin adjustments are not earnings.
func migrate0002(ctx context.Context) error {
	return xcontext.DB(ctx).Exec(
		"UPDATE users SET earned = ("+
			"SELECT COALESCE(SUM(delta), 0) FROM balance_transactions "+
			"WHERE balance_transactions.user_id = users.id "+
			"AND balance_transactions.delta > 0 "+
			"AND balance_transactions.reason <> ?)",
		"Admin adjustment",
	).Error
}
