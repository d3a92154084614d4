package mcp

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil corpus service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingCorpusService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Corpus: &mockCorpusService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingCorpusService)
	assert.NoError(t, (&Ports{Corpus: &mockCorpusService{}}).Validate())
}

func TestPorts_TopK(t *testing.T) {
	assert.Equal(t, 3, (&Ports{}).topK())
	assert.Equal(t, 7, (&Ports{TopK: 7}).topK())
}

func TestNewServer_NilPorts(t *testing.T) {
	server, err := NewServer(nil)

	assert.ErrorIs(t, err, ErrMissingCorpusService)
	assert.Nil(t, server)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Corpus: &mockCorpusService{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Corpus: &mockCorpusService{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "not-an-address")

	assert.ErrorContains(t, err, "listen on")
}
