package swapper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

func TestLoader_Load_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.png")
	require.NoError(t, os.WriteFile(path, []byte("image-bytes"), 0o644))

	loader := &Loader{}

	t.Run("ローカルパスを読み込めるのだ", func(t *testing.T) {
		data, err := loader.Load(context.Background(), domain.ImageRef(path))
		require.NoError(t, err)
		assert.Equal(t, []byte("image-bytes"), data)
	})

	t.Run("存在しないパスはエラーになるのだ", func(t *testing.T) {
		_, err := loader.Load(context.Background(), domain.ImageRef(filepath.Join(dir, "missing.png")))
		assert.Error(t, err)
	})
}

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"不正なスキーム", "gopher://example.com", true},
		{"ループバックIP", "http://127.0.0.1/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"リンクローカル", "http://169.254.169.254/latest/meta-data", true},
		{"パース不能なURL", "://broken", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := isSafeURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("isSafeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && safe {
				t.Errorf("%s: unsafe URL was flagged as safe", tt.url)
			}
		})
	}
}
