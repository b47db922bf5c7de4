package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/rules_sri/config"
	"github.com/byte4ever/rules_sri/digest"
)

func writeTemp(
	tb testing.TB,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(tb.TempDir(), "config.yaml")
	require.NoError(
		tb,
		os.WriteFile(pa, []byte(content), 0o600),
	)

	return pa
}

func TestLoad_full_file(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, `
algorithm: SHA512
format: script
copy: true
parallelism: 8
timeout: 30s
user_agent: sri/1.0
github:
  access_token: ghp_x
  enterprise_host: git.corp.example.com
gitlab:
  host: https://gitlab.example.com
  access_token: glpat_y
`)

	cfg, err := config.Load(pa)

	require.NoError(t, err)
	assert.Equal(t, "SHA512", cfg.Algorithm)
	assert.Equal(t, "script", cfg.Format)
	assert.True(t, cfg.Copy)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, "sri/1.0", cfg.UserAgent)
	assert.Equal(t, "ghp_x", cfg.GitHub.AccessToken)
	assert.Equal(t, "git.corp.example.com", cfg.GitHub.EnterpriseHost)
	assert.Equal(t, "https://gitlab.example.com", cfg.GitLab.Host)
	assert.Equal(t, "glpat_y", cfg.GitLab.AccessToken)

	dur, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, dur)
}

func TestLoad_partial_file_keeps_defaults(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "copy: true\n")

	cfg, err := config.Load(pa)

	require.NoError(t, err)
	assert.Equal(t, config.DefaultAlgorithm, cfg.Algorithm)
	assert.Equal(t, config.DefaultFormat, cfg.Format)
	assert.Equal(t, config.DefaultParallelism, cfg.Parallelism)
	assert.True(t, cfg.Copy)
}

func TestLoad_missing_explicit_file(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/config.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestLoad_unknown_field(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "algorithm: sha256\nalgorithms: [sha512]\n")

	_, err := config.Load(pa)

	assert.Error(t, err)
}

func TestLoad_unsupported_algorithm(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "algorithm: md5\n")

	_, err := config.Load(pa)

	var uae *digest.UnsupportedAlgorithmError
	assert.ErrorAs(t, err, &uae)
}

func TestLoad_bad_timeout(t *testing.T) {
	t.Parallel()

	pa := writeTemp(t, "timeout: soon\n")

	_, err := config.Load(pa)

	assert.ErrorContains(t, err, "invalid timeout")
}

func TestValidate_parallelism(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Parallelism = 0

	assert.ErrorContains(t, cfg.Validate(), "parallelism")
}

func TestDefault_is_valid(t *testing.T) {
	t.Parallel()

	assert.NoError(t, config.Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"GITHUB_TOKEN": "from-env-gh",
		"GITLAB_TOKEN": "from-env-gl",
	}

	cfg := config.Default()
	cfg.GitHub.AccessToken = "from-file"

	cfg.ApplyEnv(func(key string) string { return env[key] })

	assert.Equal(t, "from-file", cfg.GitHub.AccessToken)
	assert.Equal(t, "from-env-gl", cfg.GitLab.AccessToken)
}
