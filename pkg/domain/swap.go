package domain

import "github.com/shouni/garment-swap-kit/pkg/prompt"

// ImageRef は入力画像の参照です。ローカルパス、http(s) URL、gs:// URI を受け付けます。
// 参照先の解決（読み込み）はクライアント層の責務です。
type ImageRef string

// SwapRequest は一回の着せ替え要求です。
// モデル写真と置き換え対象の平置き（アプラ）写真、使用するプロンプト仕様を保持します。
type SwapRequest struct {
	ID           string      // 呼び出し側が付与する識別子（空の場合は画像参照から導出）
	ModelImage   ImageRef    // 人物（ポーズ・顔を保持する側）
	FlatLayImage ImageRef    // 平置きの衣服（色・質感の供給源）
	ExtraImage   ImageRef    // 任意の追加参照画像（空で省略）
	Prompt       prompt.Spec // 合成するプロンプト仕様
	OutputName   string      // 任意の出力ファイル名（空の場合はオーケストレーターが導出）
}

// Identity は要求の識別子を返します。ID 未指定の場合は入力画像の組から導出します。
func (r SwapRequest) Identity() string {
	if r.ID != "" {
		return r.ID
	}
	return string(r.ModelImage) + "+" + string(r.FlatLayImage)
}

// ImagePayload は検証済みの生成画像です。
type ImagePayload struct {
	Data   []byte
	Format string // "png" または "jpg"
	Width  int
	Height int
}

// ByteSize はペイロードのバイト数を返します。
func (p *ImagePayload) ByteSize() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// SwapResult は一回の着せ替え要求の最終結果です。
// Payload と Failure は必ず一方だけが設定されます。生成後は変更しません。
type SwapResult struct {
	Payload  *ImagePayload
	Failure  *Failure
	Attempts int // 実際に行った API 試行回数
}

// OK は生成が成功したかどうかを返します。
func (r SwapResult) OK() bool {
	return r.Payload != nil && r.Failure == nil
}

// BatchEntry はバッチ内の一件分の記録です。
// PersistErr は出力書き込みの失敗で、生成結果（Result）とは独立に記録されます。
type BatchEntry struct {
	RequestID  string
	Result     SwapResult
	OutputPath string   // 書き込みに成功した場合の出力先
	PersistErr *Failure // KindPersistError（書き込み失敗時のみ）
}

// BatchReport は一回のバッチ実行の記録です。入力順に一件ずつ必ず対応します。
type BatchReport []BatchEntry

// Succeeded は生成と書き込みの両方に成功した件数を返します。
func (b BatchReport) Succeeded() int {
	n := 0
	for _, e := range b {
		if e.Result.OK() && e.PersistErr == nil {
			n++
		}
	}
	return n
}

// Failed は生成または書き込みに失敗した件数を返します。
func (b BatchReport) Failed() int {
	return len(b) - b.Succeeded()
}
