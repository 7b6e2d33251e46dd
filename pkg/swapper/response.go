package swapper

import (
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// extractImage は応答から画像データを持つ最初の候補を選びます。
// 画像が含まれない応答（テキストのみの拒否等）は KindRejected として扱います。
// 同一リクエストを再送しても拒否は解消しないため、再試行には回しません。
func extractImage(resp *gemini.Response) ([]byte, string, *domain.Failure) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, "", domain.NewFailure(domain.KindRejected, 0, nil,
			"応答に候補が含まれていません")
	}

	for _, candidate := range resp.RawResponse.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, part.InlineData.MIMEType, nil
			}
		}
	}

	// 画像パーツが無い場合は終了理由を添えて拒否として報告します。
	first := resp.RawResponse.Candidates[0]
	if first != nil &&
		first.FinishReason != genai.FinishReasonUnspecified &&
		first.FinishReason != genai.FinishReasonStop {
		return nil, "", domain.NewFailure(domain.KindRejected, 0, nil,
			"画像生成が異常終了しました (FinishReason: %s)", first.FinishReason)
	}
	return nil, "", domain.NewFailure(domain.KindRejected, 0, nil,
		"応答に画像データが含まれていません")
}
