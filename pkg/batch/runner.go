// Package batch は複数の着せ替え要求を順番に処理するオーケストレーターです。
// 一件の失敗はバッチ全体を止めず、入力一件につき必ず一件の記録を残します。
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/garment-swap-kit/pkg/config"
	"github.com/shouni/garment-swap-kit/pkg/domain"
	"github.com/shouni/garment-swap-kit/pkg/prompt"
)

// Submitter は一回の着せ替え要求を解決するクライアントの窓口です。
// swapper.Client がそのまま適合します。
type Submitter interface {
	Submit(ctx context.Context, req domain.SwapRequest) domain.SwapResult
}

// Runner はバッチ実行と結果の永続化を担当します。
// 要求間で共有するのは読み取り専用の Config のみで、横断的な再試行は行いません
// （再試行はクライアント層の一要求内に閉じます）。
type Runner struct {
	client Submitter
	cfg    config.Config
}

// NewRunner は依存関係を注入して Runner を初期化します。
func NewRunner(client Submitter, cfg config.Config) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{client: client, cfg: cfg}, nil
}

// RunBatch は要求列を入力順に逐次処理します。
// 個々の失敗で打ち切らず、常に入力と同数の記録を返します。
func (r *Runner) RunBatch(ctx context.Context, reqs []domain.SwapRequest) domain.BatchReport {
	slog.Info("バッチ処理を開始します", "count", len(reqs))

	report := make(domain.BatchReport, 0, len(reqs))
	for _, req := range reqs {
		report = append(report, r.processOne(ctx, req))
	}

	slog.Info("バッチ処理が完了しました",
		"count", len(report), "succeeded", report.Succeeded(), "failed", report.Failed())
	return report
}

// RunSingle は一件だけのバッチとして要求を処理します。
func (r *Runner) RunSingle(ctx context.Context, req domain.SwapRequest) domain.BatchEntry {
	return r.processOne(ctx, req)
}

// processOne は一件の要求を解決し、成功時はペイロードを出力先へ書き込みます。
// 書き込み失敗は生成結果とは別に KindPersistError として記録します。
func (r *Runner) processOne(ctx context.Context, req domain.SwapRequest) domain.BatchEntry {
	entry := domain.BatchEntry{RequestID: req.Identity()}
	entry.Result = r.client.Submit(ctx, req)
	if !entry.Result.OK() {
		slog.Warn("要求が失敗しました。残りの処理を続行します",
			"request", entry.RequestID, "kind", string(entry.Result.Failure.Kind))
		return entry
	}

	path := r.outputPath(req)
	if err := writePayload(path, entry.Result.Payload.Data); err != nil {
		slog.Error("出力の書き込みに失敗しました", "request", entry.RequestID, "path", path, "error", err)
		entry.PersistErr = domain.NewFailure(domain.KindPersistError, 0, err,
			"出力を書き込めませんでした: %s", path)
		return entry
	}

	entry.OutputPath = path
	slog.Info("出力を保存しました", "request", entry.RequestID, "path", path)
	return entry
}

// outputPath は出力先を決定します。明示的なファイル名があればそれを使い、
// なければ入力二枚の識別子から決定的に導出します。
func (r *Runner) outputPath(req domain.SwapRequest) string {
	if req.OutputName != "" {
		return filepath.Join(r.cfg.OutputDir, req.OutputName)
	}
	if req.Prompt.Template == prompt.TemplateModelVariation || req.FlatLayImage == "" {
		name := fmt.Sprintf("%s_variation.%s", stem(string(req.ModelImage)), r.cfg.OutputFormat)
		return filepath.Join(r.cfg.OutputDir, name)
	}
	return r.cfg.OutputPath(string(req.ModelImage), string(req.FlatLayImage))
}

func writePayload(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
