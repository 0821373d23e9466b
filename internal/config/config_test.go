package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasSaneValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3000, cfg.Router.ShortThreshold)
	assert.Equal(t, 10000, cfg.Router.LongThreshold)
	assert.Equal(t, "gpt-4o", cfg.Reasoner.PrimaryModel)
	assert.Equal(t, "India", cfg.Jurisdiction)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_EnvOverridesApply(t *testing.T) {
	t.Setenv("SHORT_THRESHOLD", "1234")
	t.Setenv("JURISDICTION_DEFAULT", "GCC")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Router.ShortThreshold)
	assert.Equal(t, "GCC", cfg.Jurisdiction)
}

func TestLoad_ResolvesEnvIndirectedAPIKey(t *testing.T) {
	t.Setenv("REASONER_API_KEY", "${MY_SECRET_VAR}")
	t.Setenv("MY_SECRET_VAR", "sk-test-123")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.Reasoner.APIKey)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestGetSecureValue_Literal(t *testing.T) {
	v, err := GetSecureValue("plain-value")
	require.NoError(t, err)
	assert.Equal(t, "plain-value", v)
}

func TestGetSecureValue_EnvIndirection(t *testing.T) {
	os.Setenv("ADAUDIT_TEST_SECRET", "resolved")
	defer os.Unsetenv("ADAUDIT_TEST_SECRET")

	v, err := GetSecureValue("${ADAUDIT_TEST_SECRET}")
	require.NoError(t, err)
	assert.Equal(t, "resolved", v)
}

func TestEncryptDecryptValue_RoundTrips(t *testing.T) {
	t.Setenv("ADAUDIT_ENCRYPTION_KEY", "a-test-key-that-is-long-enough!!")

	enc, err := EncryptValue("top secret")
	require.NoError(t, err)
	assert.NotEqual(t, "top secret", enc)

	dec, err := DecryptValue(enc)
	require.NoError(t, err)
	assert.Equal(t, "top secret", dec)
}
