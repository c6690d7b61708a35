package middleware

import (
	"context"
	"strings"

	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/pkg/authenticator"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

// AuthVerifier identifies the request user from the access token issued by
// the auth provider. The token is read from the Authorization header, then
// from the access token cookie.
type AuthVerifier struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	optional    bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken(engine authenticator.TokenEngine[model.AccessToken]) *AuthVerifier {
	a.tokenEngine = engine
	return a
}

// WithOptional lets anonymous requests pass, a valid token still sets the
// request user.
func (a *AuthVerifier) WithOptional() *AuthVerifier {
	a.optional = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		userID, err := a.Verify(ctx)
		if err != nil {
			if a.optional {
				return nil, nil
			}

			return nil, err
		}

		return xcontext.WithRequestUserID(ctx, userID), nil
	}
}

// Verify returns the id of the account owning the request token.
func (a *AuthVerifier) Verify(ctx context.Context) (string, error) {
	token := accessToken(ctx)
	if token == "" || a.tokenEngine == nil {
		return "", errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	info, err := a.tokenEngine.Verify(token)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid access token: %v", err)
		return "", errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	if info.ID == "" {
		return "", errorx.New(errorx.Unauthenticated, "Invalid access token")
	}

	return info.ID, nil
}

func accessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
