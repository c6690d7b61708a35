package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type GlobalRoleVerifier struct {
	userRepo repository.UserRepository
}

func NewGlobalRoleVerifier(userRepo repository.UserRepository) *GlobalRoleVerifier {
	return &GlobalRoleVerifier{userRepo: userRepo}
}

// Verify returns nil if the request user is an admin or the owner.
func (verifier *GlobalRoleVerifier) Verify(ctx context.Context) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return errors.New("user is not authenticated")
	}

	u, err := verifier.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user is not valid")
	}

	if !u.CanAdministrate() {
		return errors.New("user role does not have permission")
	}

	return nil
}
