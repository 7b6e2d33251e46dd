package swapper

import (
	"context"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// Generator は着せ替えクライアントが利用するリモート生成モデルの窓口です。
// go-gemini-client の GenerativeModel がそのまま適合します。
type Generator interface {
	// GenerateWithParts は、テキストと画像のパーツ列で画像生成リクエストを実行します。
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// SourceLoader は ImageRef を読み取り専用のバイト列に解決します。
type SourceLoader interface {
	Load(ctx context.Context, ref domain.ImageRef) ([]byte, error)
}

// Sleeper はバックオフ待機を抽象化します。テストでは固定クロックに差し替えます。
type Sleeper interface {
	// Sleep は d の間待機します。コンテキストが先に終了した場合はそのエラーを返します。
	Sleep(ctx context.Context, d time.Duration) error
}

// contextSleeper は実時間で待機する既定の Sleeper です。
type contextSleeper struct{}

func (contextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
