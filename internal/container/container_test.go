package container

import (
	"context"
	"net/http"
	"testing"
	"time"

	"petmarket/catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StopsOnCancel(t *testing.T) {
	c := &Container{
		Config: &config.Config{Server: config.ServerConfig{ShutdownTimeout: 1}},
		Server: &http.Server{
			Addr:    "127.0.0.1:0",
			Handler: http.NotFoundHandler(),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, c.Close())
}

func TestNewDirectory(t *testing.T) {
	dir, c := NewDirectory(config.CatalogConfig{BaseURL: "http://127.0.0.1:1", Timeout: 1, FetchTimeout: 1})
	t.Cleanup(func() { _ = c.Close() })

	assert.False(t, dir.IsReady())
	assert.Error(t, dir.Init(context.Background()))
	assert.False(t, dir.IsReady())
}
