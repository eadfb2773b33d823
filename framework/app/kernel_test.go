package app_test

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-laravel-container/framework/app"
	"github.com/km-arc/go-laravel-container/framework/container"
)

type greeterProvider struct {
	container.BaseProvider
}

func (p *greeterProvider) Register(a *container.Container) error {
	a.Bind("greeting", func(*container.Container) (any, error) { return "hello", nil })
	return nil
}

func newApp(t *testing.T) *app.Application {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("LOG_LEVEL", "error")
	a, err := app.New(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	return a
}

func TestApplication_BootsFrameworkProviders(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Register(&greeterProvider{}))
	require.NoError(t, a.Boot())

	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.NotNil(t, a.Logger())
	assert.Contains(t, a.Router().Routes(), "GET /_container/")
	assert.Equal(t, "hello", container.MustResolve[string](a.Container, "greeting"))
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port)
}

func TestApplication_RunServesUntilCancelled(t *testing.T) {
	port := freePort(t)
	t.Setenv("APP_PORT", port)
	a := newApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	url := "http://127.0.0.1:" + port + "/_container/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
