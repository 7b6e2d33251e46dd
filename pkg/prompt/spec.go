package prompt

// Template は基礎テンプレートの識別子です。
type Template string

const (
	// TemplateGarmentSwap は平置き写真の衣服をモデル写真へ移植する標準テンプレートです。
	TemplateGarmentSwap Template = "garment_swap"
	// TemplateModelVariation は衣装とスタイルを保ったまま顔とポーズを変えるテンプレートです。
	TemplateModelVariation Template = "model_variation"
)

// Style は衣服の任意属性です。空のフィールドはプロンプトに現れません。
type Style struct {
	Color       string // 例: "beige", "camel", "charcoal"
	Garment     string // 例: "turtleneck", "crew neck", "cardigan"
	KnitPattern string // 例: "cable knit", "ribbed", "plain"
}

// empty は属性が一つも指定されていないかどうかを返します。
func (s Style) empty() bool {
	return s.Color == "" && s.Garment == "" && s.KnitPattern == ""
}

// Spec はプロンプト仕様の不変値です。
// 同値の Spec から Compose される文字列は常にバイト単位で一致します。
// 構築後にフィールドを変更してはいけません。
type Spec struct {
	Template    Template // 空の場合は TemplateGarmentSwap
	Style       Style
	Refinements []string // 追加指示。順序に意味があり、後勝ちの上書きはしない
}

// WithRefinements は追加指示を付け足した新しい Spec を返します。元の値は変更しません。
func (s Spec) WithRefinements(lines ...string) Spec {
	out := s
	out.Refinements = append(append([]string(nil), s.Refinements...), lines...)
	return out
}
