package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/xcontext"
)

type responseKey struct{}

var errBadRequest = errorx.New(errorx.BadRequest, "Invalid request")

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

func newErrorResponse(err error) response {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}
}

func withResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

// Response returns the handler result, it is only available in After
// middlewares and closers.
func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

func handleResponse(ctx context.Context) {
	w := xcontext.HTTPWriter(ctx)
	err := func() error {
		if err := xcontext.Error(ctx); err != nil {
			return err
		}

		if err := WriteJson(w, newResponse(Response(ctx))); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
			return errorx.New(errorx.BadResponse, "Cannot write the response")
		}

		return nil
	}()

	if err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) {
			xcontext.Logger(ctx).Errorf("Unexpected error: %v", err)
		}

		if err := WriteJson(w, newErrorResponse(err)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
	}
}

func WriteJson(w http.ResponseWriter, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		return err
	}

	return nil
}

func parseRequest(r *http.Request, req any) error {
	if r.Method == http.MethodGet {
		query := map[string]any{}
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			return err
		}

		return decoder.Decode(query)
	}

	if r.Body == nil || r.ContentLength == 0 || isEmptyStruct(req) {
		return nil
	}

	return json.NewDecoder(r.Body).Decode(req)
}

func isEmptyStruct(req any) bool {
	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct && t.NumField() == 0
}
