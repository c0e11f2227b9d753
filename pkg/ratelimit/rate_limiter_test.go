package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 100,
		PublicRequests:  20,
	}
}

// anyEvalArgs accepts whatever window timestamps the limiter computed;
// the tests only care about how it handles the script reply.
func anyEvalArgs(expected, actual []interface{}) error {
	return nil
}

// evalPlaceholders matches the arity of the script's four ARGV values;
// redismock compares argument counts before consulting anyEvalArgs.
var evalPlaceholders = []interface{}{0, 0, 0, 0}

func TestIsAllowedBlocksSaturatedWindow(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())

	// Window already holds 25 entries against a limit of 20.
	mock.CustomMatch(anyEvalArgs).
		ExpectEval("", []string{"tickethub:ratelimit:203.0.113.9:public"}, evalPlaceholders...).
		SetVal([]interface{}{int64(25), int64(-5)})

	result, err := limiter.IsAllowed(context.Background(), "203.0.113.9", RateLimitTypePublic)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 20, result.Limit)
	assert.Equal(t, 0, result.Remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowedUnderLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())

	mock.CustomMatch(anyEvalArgs).
		ExpectEval("", []string{"tickethub:ratelimit:203.0.113.9:public"}, evalPlaceholders...).
		SetVal([]interface{}{int64(3), int64(17)})

	result, err := limiter.IsAllowed(context.Background(), "203.0.113.9", RateLimitTypePublic)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 17, result.Remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowedRejectsMalformedReply(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(client, testConfig())

	mock.CustomMatch(anyEvalArgs).
		ExpectEval("", []string{"tickethub:ratelimit:203.0.113.9:public"}, evalPlaceholders...).
		SetVal([]interface{}{"25", "17"})

	_, err := limiter.IsAllowed(context.Background(), "203.0.113.9", RateLimitTypePublic)
	require.Error(t, err)
}

func TestIsAllowedSkipsWhitelistedIP(t *testing.T) {
	client, _ := redismock.NewClientMock()
	config := testConfig()
	config.WhitelistedIPs = []string{"10.0.0.1"}
	limiter := NewRateLimiter(client, config)

	result, err := limiter.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypePublic)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 20, result.Remaining)
}

func TestLuaIntConversions(t *testing.T) {
	n, ok := luaInt(int64(25))
	assert.True(t, ok)
	assert.Equal(t, 25, n)

	_, ok = luaInt("25")
	assert.False(t, ok)

	_, ok = luaInt(25.0)
	assert.False(t, ok)
}
