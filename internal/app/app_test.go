package app

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/event-registration-server/internal/auth"
	mocksvc "github.com/stacklok/event-registration-server/internal/service/mocks"
)

// createTestApp creates a RegistrationApp around a mocked service without
// going through NewRegistrationApp
func createTestApp(t *testing.T, ctrl *gomock.Controller, addr string) (*RegistrationApp, *atomic.Bool) {
	t.Helper()

	mockSvc := mocksvc.NewMockRegistrationService(ctrl)
	mockSvc.EXPECT().CheckReadiness(gomock.Any()).Return(nil).AnyTimes()

	authn, err := auth.NewAuthenticator(testAdminEmail, testAdminPassword)
	require.NoError(t, err)
	secret, err := auth.GenerateSecret()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(secret)
	require.NoError(t, err)

	components := &AppComponents{
		RegistrationService: mockSvc,
		Authenticator:       authn,
		Sessions:            sessions,
	}

	appCfg := &registrationAppConfig{
		address:        addr,
		requestTimeout: 10 * time.Second,
		readTimeout:    10 * time.Second,
		writeTimeout:   15 * time.Second,
		idleTimeout:    60 * time.Second,
	}

	server, err := buildHTTPServer(context.Background(), appCfg, components)
	require.NoError(t, err)

	cleaned := &atomic.Bool{}
	appCtx, cancel := context.WithCancel(context.Background())

	return &RegistrationApp{
		config:     createTestConfig(t),
		components: components,
		httpServer: server,
		ctx:        appCtx,
		cancelFunc: func() {
			cleaned.Store(true)
			cancel()
		},
	}, cleaned
}

// freeAddr returns a loopback address with a port that was free a moment ago
func freeAddr(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func waitForHealth(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRegistrationApp_StartStop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	addr := freeAddr(t)
	app, cleaned := createTestApp(t, ctrl, addr)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	waitForHealth(t, addr)

	require.NoError(t, app.Stop(5*time.Second))
	assert.True(t, cleaned.Load(), "storage should be released on stop")

	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestRegistrationApp_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, cleaned := createTestApp(t, ctrl, ":0")

	require.NoError(t, app.Stop(time.Second))
	assert.True(t, cleaned.Load())
}

func TestRegistrationApp_StartAddressInUse(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	ctrl := gomock.NewController(t)
	app, _ := createTestApp(t, ctrl, listener.Addr().String())

	err = app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}

func TestRegistrationApp_Run(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	addr := freeAddr(t)
	app, cleaned := createTestApp(t, ctrl, addr)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Run(ctx, 5*time.Second)
	}()

	waitForHealth(t, addr)
	cancel()

	select {
	case err := <-errChan:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	assert.True(t, cleaned.Load())
}

func TestRegistrationApp_Getters(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, _ := createTestApp(t, ctrl, ":0")

	assert.NotNil(t, app.GetConfig())
	assert.NotNil(t, app.GetHTTPServer())
	assert.NotNil(t, app.GetComponents().Sessions)
}
