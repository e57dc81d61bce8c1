package cache

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeasy/errors"
)

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}

// TestParseType 测试后端类型别名
func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"", TypeEmbedded},
		{"ehcache", TypeEmbedded},
		{"Embedded", TypeEmbedded},
		{"redis", TypeNetworked},
		{" networked ", TypeNetworked},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseType("memcached")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
}

// TestConfig_Validate 测试配置校验
func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "easy_", cfg.Prefix)
	assert.Equal(t, 4*time.Hour, cfg.TimeToLive)

	cfg.TimeToLive = 0
	assert.NoError(t, cfg.Validate())

	cfg.Type = TypeNetworked
	assert.Error(t, cfg.Validate())

	cfg.TimeToLive = time.Hour
	assert.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TimeToLive = -time.Second
	assert.Error(t, cfg.Validate())
}
