// Package swapper は着せ替え要求をリモート生成モデルへ送信するクライアント層です。
// タイムアウト、指数バックオフ付きの再試行、応答画像の構造的検証を担当します。
// 生成そのものは外部モデルに委ね、永続化はオーケストレーター側の責務です。
package swapper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/garment-swap-kit/pkg/config"
	"github.com/shouni/garment-swap-kit/pkg/domain"
	"github.com/shouni/garment-swap-kit/pkg/imgutil"
	"github.com/shouni/garment-swap-kit/pkg/prompt"
)

// 追加参照画像を含む三枚構成のときは合計ピクセル数を抑えるため長辺上限を下げます。
const maxInputDimWithExtra = 1536

// 送信前の入力再圧縮品質。入力は質感の参照であり、劣化は許容範囲です。
const inputCompressionQuality = 90

// Client は一回の着せ替え要求を解決するステートレスなクライアントです。
// 呼び出し間で状態を共有せず、読み取り専用の Config のみを参照します。
type Client struct {
	aiClient Generator
	loader   SourceLoader
	cfg      config.Config
	sleeper  Sleeper
}

// New は依存関係を注入して Client を初期化します。
// sleeper は nil を許容します（実時間で待機する既定実装を使用）。
func New(aiClient Generator, loader SourceLoader, cfg config.Config, sleeper Sleeper) (*Client, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sleeper == nil {
		sleeper = contextSleeper{}
	}
	return &Client{aiClient: aiClient, loader: loader, cfg: cfg, sleeper: sleeper}, nil
}

// Submit は一回の着せ替え要求を実行し、最終結果を返します。
//
// 再試行規約: MaxRetries は初回試行の「後」に許す再試行回数です。
// 合計試行回数は MaxRetries + 1 で、i 回目の失敗後には RetryDelay * 2^(i-1) 待機します。
// 再試行するのは一時的な失敗（ネットワーク断・5xx・レート制限）のみで、
// 認証エラーやポリシー拒否は即座に確定します。
func (c *Client) Submit(ctx context.Context, req domain.SwapRequest) domain.SwapResult {
	parts, failure := c.buildParts(ctx, req)
	if failure != nil {
		return domain.SwapResult{Failure: failure}
	}

	slog.Info("着せ替えリクエストを送信します",
		"request", req.Identity(), "model", c.cfg.ModelName, "parts", len(parts))

	maxAttempts := c.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.generateOnce(ctx, parts)
		if err == nil {
			return c.finishResult(req, resp, attempt)
		}

		kind := classify(err)
		if !kind.Retryable() {
			slog.Warn("再試行対象外の失敗で確定します",
				"request", req.Identity(), "kind", string(kind), "attempt", attempt, "error", err)
			return failureResult(kind, attempt, err, "リモート呼び出しが拒否されました")
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}

		delay := backoffDelay(c.cfg.RetryDelay, attempt)
		slog.Warn("一時的な失敗のため再試行します",
			"request", req.Identity(), "attempt", attempt, "max_attempts", maxAttempts,
			"delay", delay, "error", err)
		if err := c.sleeper.Sleep(ctx, delay); err != nil {
			return failureResult(domain.KindExhausted, attempt, err, "バックオフ待機中に中断されました")
		}
	}

	slog.Error("再試行予算を使い切りました",
		"request", req.Identity(), "attempts", maxAttempts, "error", lastErr)
	return failureResult(domain.KindExhausted, maxAttempts, lastErr,
		"%d 回の試行すべてが失敗しました", maxAttempts)
}

// generateOnce は一回分の試行を実行します。RequestTimeout が設定されていれば
// その試行だけに期限を課します。
func (c *Client) generateOnce(ctx context.Context, parts []*genai.Part) (*gemini.Response, error) {
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}
	return c.aiClient.GenerateWithParts(ctx, c.cfg.ModelName, parts, gemini.GenerateOptions{})
}

// buildParts は事前条件を検証し、送信パーツ列を組み立てます。
// 違反はネットワーク試行を一切行わず KindInvalidInput（試行回数 0）で確定します。
func (c *Client) buildParts(ctx context.Context, req domain.SwapRequest) ([]*genai.Part, *domain.Failure) {
	promptText := prompt.Compose(req.Prompt)
	if strings.TrimSpace(promptText) == "" {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, nil, "プロンプトが空です")
	}

	// 顔・ポーズ変更テンプレートはモデル写真一枚だけで動作します。
	needFlatLay := req.Prompt.Template != prompt.TemplateModelVariation

	refs := []struct {
		name string
		ref  domain.ImageRef
	}{
		{"model image", req.ModelImage},
		{"flat-lay image", req.FlatLayImage},
		{"extra image", req.ExtraImage},
	}

	maxDim := c.cfg.MaxInputDim
	if req.ExtraImage != "" && (maxDim <= 0 || maxDim > maxInputDimWithExtra) {
		maxDim = maxInputDimWithExtra
	}

	parts := []*genai.Part{{Text: promptText}}
	for i, in := range refs {
		if in.ref == "" {
			if i == 0 || (i == 1 && needFlatLay) {
				return nil, domain.NewFailure(domain.KindInvalidInput, 0, nil,
					"%s が指定されていません", in.name)
			}
			continue
		}

		part, failure := c.loadImagePart(ctx, in.name, in.ref, maxDim)
		if failure != nil {
			return nil, failure
		}
		parts = append(parts, part)
	}

	return parts, nil
}

// loadImagePart は一枚分の入力画像を読み込み、検証・縮小して genai.Part に変換します。
func (c *Client) loadImagePart(ctx context.Context, name string, ref domain.ImageRef, maxDim int) (*genai.Part, *domain.Failure) {
	data, err := c.loader.Load(ctx, ref)
	if err != nil {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, err,
			"%s を読み込めませんでした: %s", name, ref)
	}
	if len(data) == 0 {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, nil,
			"%s が空です: %s", name, ref)
	}
	if c.cfg.MaxInputBytes > 0 && len(data) > c.cfg.MaxInputBytes {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, nil,
			"%s が上限 %d バイトを超えています: %d バイト", name, c.cfg.MaxInputBytes, len(data))
	}

	w, h, err := imgutil.Dimensions(data)
	if err != nil {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, err,
			"%s を画像として解釈できません: %s", name, ref)
	}

	if maxDim > 0 && (w > maxDim || h > maxDim) {
		slog.Info("入力画像が大きいため縮小します",
			"image", name, "width", w, "height", h, "max_dimension", maxDim)
		resized, err := imgutil.ResizeToMax(data, maxDim, inputCompressionQuality)
		if err != nil {
			return nil, domain.NewFailure(domain.KindInvalidInput, 0, err,
				"%s の縮小に失敗しました", name)
		}
		data = resized
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, domain.NewFailure(domain.KindInvalidInput, 0, nil,
			"%s の MIME タイプが画像ではありません: %s", name, mimeType)
	}

	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}, nil
}

// finishResult は成功応答から画像を取り出し、構造的検証と出力フォーマット変換を行います。
// 復号不能・寸法不足はクライアント層では再試行しません（作り直しは呼び出し側の判断）。
func (c *Client) finishResult(req domain.SwapRequest, resp *gemini.Response, attempts int) domain.SwapResult {
	raw, mimeType, failure := extractImage(resp)
	if failure != nil {
		failure.Attempts = attempts
		slog.Warn("応答に利用可能な画像がありません",
			"request", req.Identity(), "attempts", attempts, "error", failure.Message)
		return domain.SwapResult{Failure: failure, Attempts: attempts}
	}

	img, _, err := imgutil.Decode(raw)
	if err != nil {
		return failureResult(domain.KindDecodeError, attempts, err,
			"応答画像を復号できません (MIME: %s)", mimeType)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < c.cfg.MinOutputDim || height < c.cfg.MinOutputDim {
		return failureResult(domain.KindQualityTooLow, attempts, nil,
			"生成画像が最小寸法を満たしません: %dx%d (最小 %dpx)", width, height, c.cfg.MinOutputDim)
	}

	encoded, err := imgutil.Encode(img, c.cfg.OutputFormat, c.cfg.OutputQuality)
	if err != nil {
		return failureResult(domain.KindDecodeError, attempts, err,
			"出力フォーマットへの変換に失敗しました: %s", c.cfg.OutputFormat)
	}

	slog.Info("着せ替えが成功しました",
		"request", req.Identity(), "attempts", attempts,
		"width", width, "height", height, "bytes", len(encoded))

	return domain.SwapResult{
		Payload: &domain.ImagePayload{
			Data:   encoded,
			Format: c.cfg.OutputFormat,
			Width:  width,
			Height: height,
		},
		Attempts: attempts,
	}
}

// backoffDelay は i 回目（1 始まり）の失敗後の待機時間を返します。
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << (attempt - 1)
}

func failureResult(kind domain.Kind, attempts int, err error, format string, args ...any) domain.SwapResult {
	return domain.SwapResult{
		Failure:  domain.NewFailure(kind, attempts, err, format, args...),
		Attempts: attempts,
	}
}
