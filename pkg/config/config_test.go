package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("既定値で構築できるのだ", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		base := t.TempDir()

		cfg, err := FromEnv(base)
		require.NoError(t, err)

		assert.Equal(t, "test-key", cfg.APIKey)
		assert.Equal(t, DefaultModelName, cfg.ModelName)
		assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)
		assert.Equal(t, DefaultOutputQuality, cfg.OutputQuality)
		assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
		assert.Equal(t, time.Second, cfg.RetryDelay)
		assert.Equal(t, DefaultMinOutputDim, cfg.MinOutputDim)
		assert.Equal(t, filepath.Join(base, "input", "models"), cfg.InputModelsDir)
		assert.Equal(t, filepath.Join(base, "input", "aplat"), cfg.InputFlatLayDir)
		assert.Equal(t, filepath.Join(base, "output"), cfg.OutputDir)
	})

	t.Run("環境変数で上書きできるのだ", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		t.Setenv("SWAP_OUTPUT_FORMAT", "jpg")
		t.Setenv("SWAP_OUTPUT_QUALITY", "80")
		t.Setenv("SWAP_MAX_RETRIES", "5")
		t.Setenv("SWAP_RETRY_DELAY_SECONDS", "0.5")

		cfg, err := FromEnv(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "jpg", cfg.OutputFormat)
		assert.Equal(t, 80, cfg.OutputQuality)
		assert.Equal(t, 5, cfg.MaxRetries)
		assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	})

	t.Run("APIキーが無い場合はエラーになるのだ", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		_, err := FromEnv(t.TempDir())
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		APIKey:        "k",
		OutputFormat:  "png",
		OutputQuality: 95,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MinOutputDim:  512,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"出力フォーマットが不正", func(c *Config) { c.OutputFormat = "webp" }},
		{"出力品質が範囲外", func(c *Config) { c.OutputQuality = 0 }},
		{"再試行回数が負", func(c *Config) { c.MaxRetries = -1 }},
		{"待機時間がゼロ", func(c *Config) { c.RetryDelay = 0 }},
		{"最小寸法がゼロ", func(c *Config) { c.MinOutputDim = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_OutputPath(t *testing.T) {
	cfg := Config{OutputFormat: "png", OutputDir: "/out"}

	got := cfg.OutputPath("porte1.png", "aplat_rose.jpg")
	assert.Equal(t, filepath.Join("/out", "porte1_aplat_rose_swap.png"), got)

	// 導出は決定的であること
	assert.Equal(t, got, cfg.OutputPath("porte1.png", "aplat_rose.jpg"))
}

func TestConfig_EnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Config{
		InputModelsDir:  filepath.Join(base, "input", "models"),
		InputFlatLayDir: filepath.Join(base, "input", "aplat"),
		OutputDir:       filepath.Join(base, "output"),
	}

	require.NoError(t, cfg.EnsureDirectories())
	// 二回目も成功すること（冪等）
	require.NoError(t, cfg.EnsureDirectories())
}
