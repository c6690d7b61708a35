package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/router"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

const sessionDeviceIDKey = "device_id"

// IdentifyDevice gives every browser a stable device id kept in a signed
// session cookie.
func IdentifyDevice(store sessions.Store) router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		req := xcontext.HTTPRequest(ctx)
		name := xcontext.Configs(ctx).Session.Name

		// A broken cookie is replaced by a new session.
		session, err := store.Get(req, name)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot decode session: %v", err)
		}

		if session == nil {
			if session, err = store.New(req, name); session == nil {
				xcontext.Logger(ctx).Errorf("Cannot create session: %v", err)
				return nil, errorx.Unknown
			}
		}

		deviceID, ok := session.Values[sessionDeviceIDKey].(string)
		if !ok || deviceID == "" {
			deviceID = uuid.NewString()
			session.Values[sessionDeviceIDKey] = deviceID
			if err := session.Save(req, xcontext.HTTPWriter(ctx)); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot save session: %v", err)
			}
		}

		return xcontext.WithDeviceID(ctx, deviceID), nil
	}
}
