package middleware_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/spdm-lab/rewards/internal/entity"
	"github.com/spdm-lab/rewards/internal/middleware"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/authenticator"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/spdm-lab/rewards/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func withRequest(ctx context.Context, req *http.Request) (context.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	return ctx, w
}

func newTokenEngine() authenticator.TokenEngine[model.AccessToken] {
	return authenticator.NewTokenEngine[model.AccessToken](testutil.MockConfigs().Auth)
}

func Test_AuthVerifier(t *testing.T) {
	engine := newTokenEngine()
	token, err := engine.Generate(testutil.User2.ID, model.AccessToken{ID: testutil.User2.ID})
	require.NoError(t, err)

	verifier := middleware.NewAuthVerifier().WithAccessToken(engine)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		ctx, _ := withRequest(testutil.MockContext(), req)

		newCtx, err := verifier.Middleware()(ctx)
		require.NoError(t, err)
		require.Equal(t, testutil.User2.ID, xcontext.RequestUserID(newCtx))
	})

	t.Run("cookie", func(t *testing.T) {
		ctx := testutil.MockContext()
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.AddCookie(&http.Cookie{Name: xcontext.Configs(ctx).Auth.AccessToken.Name, Value: token})
		ctx, _ = withRequest(ctx, req)

		newCtx, err := verifier.Middleware()(ctx)
		require.NoError(t, err)
		require.Equal(t, testutil.User2.ID, xcontext.RequestUserID(newCtx))
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		ctx, _ := withRequest(testutil.MockContext(), req)

		_, err := verifier.Middleware()(ctx)
		require.True(t, errorx.Is(err, errorx.Unauthenticated))
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getMe", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		ctx, _ := withRequest(testutil.MockContext(), req)

		_, err := verifier.Middleware()(ctx)
		require.True(t, errorx.Is(err, errorx.Unauthenticated))
	})

	t.Run("optional", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getLeaderboard", nil)
		ctx, _ := withRequest(testutil.MockContext(), req)

		optional := middleware.NewAuthVerifier().WithAccessToken(engine).WithOptional()
		newCtx, err := optional.Middleware()(ctx)
		require.NoError(t, err)
		require.Nil(t, newCtx)
	})
}

func Test_RejectBanned(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.User2.ID)
	banRepo := repository.NewBanRepository()
	reject := middleware.RejectBanned(banRepo)

	_, err := reject(ctx)
	require.NoError(t, err)

	err = banRepo.Create(ctx, &entity.BanRecord{
		Base:      entity.Base{ID: uuid.NewString()},
		UserID:    testutil.User2.ID,
		Reason:    "spam",
		BannedBy:  testutil.Admin.ID,
		ExpiresAt: sql.NullTime{Valid: true, Time: time.Now().Add(time.Hour)},
	})
	require.NoError(t, err)

	_, err = reject(ctx)
	require.True(t, errorx.Is(err, errorx.Banned))

	// Other users are not affected.
	_, err = reject(testutil.WithUserID(ctx, testutil.User3.ID))
	require.NoError(t, err)
}

func Test_OnlyAdmin(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.Admin.ID)
	onlyAdmin := middleware.NewOnlyAdmin(repository.NewUserRepository()).Middleware()

	_, err := onlyAdmin(ctx)
	require.NoError(t, err)

	_, err = onlyAdmin(testutil.WithUserID(ctx, testutil.User2.ID))
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}

func Test_IdentifyDevice(t *testing.T) {
	cfg := testutil.MockConfigs()
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	identify := middleware.IdentifyDevice(store)

	req := httptest.NewRequest(http.MethodGet, "/getRewardOffers", nil)
	ctx, w := withRequest(testutil.MockContext(), req)

	newCtx, err := identify(ctx)
	require.NoError(t, err)
	deviceID := xcontext.DeviceID(newCtx)
	require.NotEmpty(t, deviceID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, cfg.Session.Name, cookies[0].Name)

	// The same browser keeps its device id.
	req = httptest.NewRequest(http.MethodGet, "/getRewardOffers", nil)
	req.AddCookie(cookies[0])
	ctx, w = withRequest(testutil.MockContext(), req)

	newCtx, err = identify(ctx)
	require.NoError(t, err)
	require.Equal(t, deviceID, xcontext.DeviceID(newCtx))
	require.Empty(t, w.Result().Cookies())
}
