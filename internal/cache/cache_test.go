package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		url      string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{url: "redis://localhost:6379/0", wantAddr: "localhost:6379"},
		{url: "redis://:secret@cache:6380/2", wantAddr: "cache:6380", wantDB: 2},
		{url: "http://localhost:6379", wantErr: true},
		{url: "redis://localhost:6379/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c, err := New(tt.url)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			t.Cleanup(func() { _ = c.Close() })

			assert.Equal(t, tt.wantAddr, c.Addr())
			assert.Equal(t, tt.wantDB, c.Client().Options().DB)
		})
	}
}

func TestPingUnreachable(t *testing.T) {
	// a closed listener gives a port nothing answers on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := New("redis://" + addr + "/0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.PingContext(ctx))
}
