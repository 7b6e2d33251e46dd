package domain

import "fmt"

// Kind は着せ替え処理の失敗分類です。
// リトライ可否の判定はこの閉じた分類表のみで行います。
type Kind string

const (
	// KindInvalidInput は事前条件違反です。ネットワーク試行は一切行われません。
	KindInvalidInput Kind = "invalid_input"
	// KindUnauthorized は認証・認可エラーです。再試行しても成功しません。
	KindUnauthorized Kind = "unauthorized"
	// KindRejected はコンテンツポリシー等によるモデル側の拒否です。
	// 同一リクエストの再送では解決しないため再試行しません。
	KindRejected Kind = "rejected"
	// KindTransient はネットワーク断・5xx・レート制限など一時的な失敗です。
	KindTransient Kind = "transient"
	// KindExhausted はリトライ予算を使い切った状態です。
	KindExhausted Kind = "exhausted"
	// KindDecodeError は成功応答に含まれる画像データが復号できない状態です。
	KindDecodeError Kind = "decode_error"
	// KindQualityTooLow は生成画像が最小寸法を満たさない状態です。
	KindQualityTooLow Kind = "quality_too_low"
	// KindPersistError は生成成功後の出力書き込み失敗です。生成結果とは直交します。
	KindPersistError Kind = "persist_error"
)

// retryable は分類→再試行可否の静的対応表です。
// 判定はリトライループの境界で一度だけ行い、条件分岐を散在させません。
var retryable = map[Kind]bool{
	KindInvalidInput:  false,
	KindUnauthorized:  false,
	KindRejected:      false,
	KindTransient:     true,
	KindExhausted:     false,
	KindDecodeError:   false,
	KindQualityTooLow: false,
	KindPersistError:  false,
}

// Retryable は分類が再試行対象かどうかを返します。未知の分類は再試行しません。
func (k Kind) Retryable() bool {
	return retryable[k]
}

// Failure は一回の着せ替え要求の最終的な失敗内容です。
type Failure struct {
	Kind     Kind
	Message  string
	Attempts int   // 実際に行った API 試行回数（事前条件違反は 0）
	Err      error // 最後の下位エラー（ない場合は nil）
}

// Error は error インターフェースを満たします。
func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Unwrap は下位エラーを返します。errors.Is / errors.As 連携用です。
func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure は Failure を組み立てるヘルパーです。
func NewFailure(kind Kind, attempts int, err error, format string, args ...any) *Failure {
	return &Failure{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Attempts: attempts,
		Err:      err,
	}
}
