package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskbadge/pkg/config"
	"github.com/wonny/riskbadge/pkg/logger"
)

func serverConfig(port string) *config.Config {
	return &config.Config{
		Port: port,
		Env:  "development",
		API: config.APIConfig{
			ReadTimeout:     time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     time.Second,
			ShutdownTimeout: 3 * time.Second,
		},
	}
}

func TestNew_TimeoutsFromConfig(t *testing.T) {
	s := New(serverConfig("9123"), logger.Nop(), http.NotFoundHandler())

	assert.Equal(t, ":9123", s.httpServer.Addr)
	assert.Equal(t, time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 2*time.Minute, s.httpServer.WriteTimeout)
	assert.Equal(t, time.Second, s.httpServer.IdleTimeout)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(serverConfig("0"), logger.Nop(), http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	s := New(serverConfig("-1"), logger.Nop(), http.NotFoundHandler())

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start server")
}
