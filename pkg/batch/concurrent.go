package batch

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// RunBatchConcurrent は明示的な並列度の上限つきでバッチを処理します。
// 逐次処理が既定ですが、スループットが必要な場合の選択肢として提供します。
// 要求ごとの独立した失敗の扱い（一件の失敗で打ち切らない・入力順の記録）は
// RunBatch と同一です。limit が 1 以下の場合は逐次処理に委譲します。
func (r *Runner) RunBatchConcurrent(ctx context.Context, reqs []domain.SwapRequest, limit int64) domain.BatchReport {
	if limit <= 1 {
		return r.RunBatch(ctx, reqs)
	}

	slog.Info("並列バッチ処理を開始します", "count", len(reqs), "limit", limit)

	sem := semaphore.NewWeighted(limit)
	report := make(domain.BatchReport, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// コンテキスト終了後の残件も一件ずつ記録に残します。
			report[i] = domain.BatchEntry{
				RequestID: req.Identity(),
				Result: domain.SwapResult{
					Failure: domain.NewFailure(domain.KindExhausted, 0, err, "バッチが中断されました"),
				},
			}
			continue
		}

		wg.Add(1)
		go func(i int, req domain.SwapRequest) {
			defer wg.Done()
			defer sem.Release(1)
			report[i] = r.processOne(ctx, req)
		}(i, req)
	}
	wg.Wait()

	slog.Info("並列バッチ処理が完了しました",
		"count", len(report), "succeeded", report.Succeeded(), "failed", report.Failed())
	return report
}
