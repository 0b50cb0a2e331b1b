package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/gcsetutor/internal/llm"
)

// clearLLMEnv unsets vendor keys so discovery does not depend on the host.
func clearLLMEnv(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearLLMEnv(t)
	path := filepath.Join(t.TempDir(), "gcsetutor.yaml")
	yaml := `
server:
  addr: ":9090"
  request_timeout: 45s
  cors_origins: ["https://revise.example"]
store:
  backend: memory
llm:
  provider: mock
tracing:
  exporter: stdout
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("GCSE_ADDR", ":7070")
	t.Setenv("GCSE_LOG_REDACT", "false")
	t.Setenv("GCSE_LOCK_WAIT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.Server.LockWait)
	assert.Equal(t, []string{"https://revise.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, ExporterStdout, cfg.Tracing.Exporter)
	assert.False(t, cfg.Log.Redact)
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	// Unset sections keep defaults.
	assert.Equal(t, LockLocal, cfg.Lock.Backend)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	require.NoError(t, cfg.Validate())
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  adress: \":1\"\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adress")
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GCSE_ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = llm.ProviderMock
	cfg.Store.Backend = "postgres"
	cfg.Lock.Backend = "redis"
	cfg.Tracing.Exporter = "zipkin"
	cfg.Server.LockWait = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"store.dsn", "lock.redis_addr", "unknown tracing exporter", "server.lock_wait"} {
		assert.Contains(t, msg, want)
	}
	assert.True(t, strings.HasPrefix(msg, "config validation failed:"))
}

func TestValidateServer_RequiresSecret(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = llm.ProviderMock
	assert.Error(t, cfg.ValidateServer())

	cfg.Server.JWTSecret = strings.Repeat("k", 32)
	assert.NoError(t, cfg.ValidateServer())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList(""))
}
