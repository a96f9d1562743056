package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestJWT 初始化测试用 JWT 配置
func initTestJWT(t *testing.T) {
	require.NoError(t, TokenInit("test-secret-key-at-least-32-characters-long", "30m", "168h"))
}

func TestTokenInit_Validation(t *testing.T) {
	assert.Error(t, TokenInit("", "30m", "168h"))
	assert.Error(t, TokenInit("secret", "not-a-duration", "168h"))
	assert.Error(t, TokenInit("secret", "30m", "not-a-duration"))
}

func TestGenerateAndParseTokens(t *testing.T) {
	initTestJWT(t)

	access, refresh, expiry, err := GenerateTokens("usr_1", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.False(t, expiry.IsZero())

	userID, email, err := ParseTyped(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", userID)
	assert.Equal(t, "alice@example.com", email)

	userID, _, err = ParseTyped(refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", userID)
}

func TestParseTyped_RejectsWrongType(t *testing.T) {
	initTestJWT(t)

	access, refresh, _, err := GenerateTokens("usr_1", "alice@example.com")
	require.NoError(t, err)

	// 刷新令牌不能当访问令牌用，反之亦然
	_, _, err = ParseTyped(refresh, TokenTypeAccess)
	assert.Error(t, err)
	_, _, err = ParseTyped(access, TokenTypeRefresh)
	assert.Error(t, err)
}

func TestParse_RejectsTamperedToken(t *testing.T) {
	initTestJWT(t)

	access, _, _, err := GenerateTokens("usr_1", "alice@example.com")
	require.NoError(t, err)

	_, err = Parse(access + "x")
	assert.Error(t, err)
	_, err = Parse("not-a-token")
	assert.Error(t, err)
}

func TestParse_StripsBearerPrefix(t *testing.T) {
	initTestJWT(t)

	access, _, _, err := GenerateTokens("usr_1", "alice@example.com")
	require.NoError(t, err)

	claims, err := Parse("Bearer " + access)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims["user_id"])
}
