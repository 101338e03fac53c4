// Package rpc wraps mono request-reply services with JSON codecs and typed
// error transport.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/apperr"
	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/go-monolith/mono/pkg/helper"
)

// Call performs a request-reply round trip and restores typed failures.
func Call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req) (*Resp, error) {
	var resp Resp
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		// The handler's message travels untouched in RemoteError.Message;
		// Error() adds service and type decorations around it.
		var remote *monoerrors.RemoteError
		if errors.As(err, &remote) {
			if typed, ok := apperr.Parse(remote.Message); ok {
				return nil, typed
			}
		}
		return nil, fmt.Errorf("%s request failed: %w", service, err)
	}
	return &resp, nil
}

// Register exposes handler as a request-reply service. Typed failures
// returned by handler are encoded so that Call can restore them.
func Register[Req, Resp any](
	container mono.ServiceContainer,
	service string,
	handler func(ctx context.Context, req Req) (Resp, error),
) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		service,
		json.Unmarshal,
		json.Marshal,
		func(ctx context.Context, req Req, _ *mono.Msg) (Resp, error) {
			resp, err := handler(ctx, req)
			if err != nil {
				var zero Resp
				return zero, apperr.Encode(err)
			}
			return resp, nil
		},
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", service, err)
	}
	return nil
}
