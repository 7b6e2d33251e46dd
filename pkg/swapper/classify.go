package swapper

import (
	"context"
	"errors"
	"net"
	"net/http"

	"google.golang.org/genai"

	"github.com/shouni/garment-swap-kit/pkg/domain"
)

// classify はリモート呼び出しのエラーを閉じた失敗分類に正規化します。
// 再試行可否の判断材料はここで確定し、リトライループは分類表だけを参照します。
func classify(err error) domain.Kind {
	if apiErr, ok := asAPIError(err); ok {
		return classifyHTTPCode(apiErr.Code)
	}

	// 一回分の試行タイムアウトは一時的な失敗として扱います。
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.KindTransient
	}

	// 分類できないエラーはネットワーク層由来とみなして再試行に回します。
	return domain.KindTransient
}

// classifyHTTPCode は HTTP 相当のステータスコードを失敗分類へ対応づけます。
func classifyHTTPCode(code int) domain.Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return domain.KindUnauthorized
	case code == http.StatusTooManyRequests:
		return domain.KindTransient
	case code >= 500:
		return domain.KindTransient
	case code >= 400:
		// コンテンツポリシー拒否を含む。同一リクエストの再送では解決しません。
		return domain.KindRejected
	default:
		return domain.KindTransient
	}
}

// asAPIError は値・ポインタ両方の形で返される genai.APIError を取り出します。
func asAPIError(err error) (genai.APIError, bool) {
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var val genai.APIError
	if errors.As(err, &val) {
		return val, true
	}
	return genai.APIError{}, false
}
