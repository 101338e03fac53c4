package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/example/storefront/internal/apperr"
	"github.com/go-monolith/mono"
	monoerrors "github.com/go-monolith/mono/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Text string `json:"text"`
}

type echoResponse struct {
	Text string `json:"text"`
}

// echoModule serves "echo", failing with a typed error for "missing" and an
// untyped one for "boom".
type echoModule struct{}

func (echoModule) Name() string                { return "echo" }
func (echoModule) Start(context.Context) error { return nil }
func (echoModule) Stop(context.Context) error  { return nil }

func (echoModule) RegisterServices(container mono.ServiceContainer) error {
	return Register(container, "echo", func(_ context.Context, req echoRequest) (echoResponse, error) {
		switch req.Text {
		case "missing":
			return echoResponse{}, apperr.New(apperr.NotFound, "nothing to echo")
		case "boom":
			return echoResponse{}, errors.New("disk on fire")
		}
		return echoResponse{Text: req.Text}, nil
	})
}

// callerModule captures the echo module's service container.
type callerModule struct {
	container mono.ServiceContainer
}

func (m *callerModule) Name() string                { return "caller" }
func (m *callerModule) Start(context.Context) error { return nil }
func (m *callerModule) Stop(context.Context) error  { return nil }
func (m *callerModule) Dependencies() []string      { return []string{"echo"} }

func (m *callerModule) SetDependencyServiceContainer(_ string, container mono.ServiceContainer) {
	m.container = container
}

func setupTestApp(t *testing.T) mono.ServiceContainer {
	t.Helper()

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
	)
	require.NoError(t, err)

	caller := &callerModule{}
	require.NoError(t, app.Register(echoModule{}))
	require.NoError(t, app.Register(caller))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})

	require.NotNil(t, caller.container)
	return caller.container
}

func TestCall_RoundTrip(t *testing.T) {
	container := setupTestApp(t)
	ctx := context.Background()

	resp, err := Call[echoRequest, echoResponse](ctx, container, "echo", echoRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)

	_, err = Call[echoRequest, echoResponse](ctx, container, "echo", echoRequest{Text: "missing"})
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)
	assert.Equal(t, "nothing to echo", err.Error())

	_, err = Call[echoRequest, echoResponse](ctx, container, "echo", echoRequest{Text: "boom"})
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "echo request failed")
	var remote *monoerrors.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "disk on fire", remote.Message)
}
