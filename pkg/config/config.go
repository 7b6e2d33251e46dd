// Package config は着せ替え処理全体で共有する読み取り専用の設定を提供します。
// 環境変数の読み取りはこのパッケージに閉じ、クライアントやプロンプト合成層には
// 構築済みの Config 値だけを渡します。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shouni/garment-swap-kit/pkg/imgutil"
)

// 既定値。spec 上の recognized options に対応します。
const (
	DefaultModelName      = "gemini-2.5-flash-image"
	DefaultOutputFormat   = imgutil.FormatPNG
	DefaultOutputQuality  = 95
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultMinOutputDim   = 512
	DefaultMaxInputDim    = 2048
	DefaultMaxInputBytes  = 20 << 20 // 20MB
	DefaultRequestTimeout = 120 * time.Second
)

// Config はプロセス全体で共有する不変の設定値です。
// 起動時に一度だけ構築し、以降は読み取り専用で全呼び出しに渡します。
type Config struct {
	APIKey    string // 必須。秘密値のためログには出力しないこと
	ModelName string

	OutputFormat  string // "png" または "jpg"
	OutputQuality int    // JPEG のみ有効（1〜100）

	MaxRetries     int           // 初回試行の後に許す再試行回数（合計試行 = MaxRetries + 1）
	RetryDelay     time.Duration // 指数バックオフの基準待機時間
	RequestTimeout time.Duration // 一回の試行あたりの上限（0 でトランスポート任せ）

	MinOutputDim  int // 生成画像の最小許容寸法（px）
	MaxInputDim   int // 入力画像の長辺上限。超過分は送信前に縮小
	MaxInputBytes int // 入力画像一枚あたりのバイト数上限

	BaseDir         string
	InputModelsDir  string // モデル写真の置き場
	InputFlatLayDir string // 平置き（アプラ）写真の置き場
	OutputDir       string
}

// FromEnv は環境変数から Config を構築します。カレントディレクトリに .env が
// あれば先に読み込みます（未設定の変数のみ反映）。
func FromEnv(baseDir string) (Config, error) {
	_ = godotenv.Load()

	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("作業ディレクトリの取得に失敗しました: %w", err)
		}
		baseDir = wd
	}

	cfg := Config{
		APIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		ModelName:      getEnv("SWAP_MODEL_NAME", DefaultModelName),
		OutputFormat:   strings.ToLower(getEnv("SWAP_OUTPUT_FORMAT", DefaultOutputFormat)),
		OutputQuality:  getEnvInt("SWAP_OUTPUT_QUALITY", DefaultOutputQuality),
		MaxRetries:     getEnvInt("SWAP_MAX_RETRIES", DefaultMaxRetries),
		RetryDelay:     time.Duration(getEnvFloat("SWAP_RETRY_DELAY_SECONDS", 1.0) * float64(time.Second)),
		RequestTimeout: time.Duration(getEnvInt("SWAP_REQUEST_TIMEOUT_SECONDS", int(DefaultRequestTimeout/time.Second))) * time.Second,
		MinOutputDim:   getEnvInt("SWAP_MIN_OUTPUT_DIMENSION_PX", DefaultMinOutputDim),
		MaxInputDim:    getEnvInt("SWAP_MAX_INPUT_DIMENSION_PX", DefaultMaxInputDim),
		MaxInputBytes:  getEnvInt("SWAP_MAX_INPUT_BYTES", DefaultMaxInputBytes),

		BaseDir:         baseDir,
		InputModelsDir:  filepath.Join(baseDir, "input", "models"),
		InputFlatLayDir: filepath.Join(baseDir, "input", "aplat"),
		OutputDir:       filepath.Join(baseDir, "output"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c Config) Validate() error {
	switch {
	case c.APIKey == "":
		return errors.New("GEMINI_API_KEY が設定されていません")
	case c.OutputFormat != imgutil.FormatPNG && c.OutputFormat != imgutil.FormatJPEG:
		return fmt.Errorf("出力フォーマットは png か jpg を指定してください: %s", c.OutputFormat)
	case c.OutputQuality < 1 || c.OutputQuality > 100:
		return fmt.Errorf("出力品質は 1〜100 の範囲で指定してください: %d", c.OutputQuality)
	case c.MaxRetries < 0:
		return fmt.Errorf("再試行回数に負数は指定できません: %d", c.MaxRetries)
	case c.RetryDelay <= 0:
		return fmt.Errorf("再試行の基準待機時間は正の値を指定してください: %s", c.RetryDelay)
	case c.MinOutputDim <= 0:
		return fmt.Errorf("最小出力寸法は正の値を指定してください: %d", c.MinOutputDim)
	}
	return nil
}

// EnsureDirectories は入出力ディレクトリを作成します（既存なら何もしません）。
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.InputModelsDir, c.InputFlatLayDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ディレクトリの作成に失敗しました %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPath はモデル写真と平置き写真のファイル名から出力先を決定的に導出します。
// 形式: <モデル名の語幹>_<平置き名の語幹>_swap.<出力フォーマット>
func (c Config) OutputPath(modelFilename, flatlayFilename string) string {
	name := fmt.Sprintf("%s_%s_swap.%s", stem(modelFilename), stem(flatlayFilename), c.OutputFormat)
	return filepath.Join(c.OutputDir, name)
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
