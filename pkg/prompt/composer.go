package prompt

import (
	"log/slog"
	"strings"
)

const (
	// MaxRefinementLineChars は追加指示一行あたりの文字数上限です。
	// 上限はリモートモデルへの助言であり正しさの境界ではないため、
	// 超過分は失敗ではなく決定的に切り詰めます。
	MaxRefinementLineChars = 500
	// MaxRefinementTotalChars は追加指示全体の文字数上限です。
	MaxRefinementTotalChars = 2000
)

const garmentSwapBase = `TASK: You have two images - (1) a photo of a model, (2) a flat-lay photo of a garment.
Replace ONLY the clothing on the model with the garment from the flat-lay image.
Everything else in the image must remain identical.

PRESERVE (keep identical):
DO NOT CHANGE: The model's face - keep it identical (same features, expression, skin tone, hair, makeup).
DO NOT CHANGE: The model's pose, body, proportions, posture, position, or stance.
DO NOT CHANGE: The lighting - keep it identical (same direction, intensity, shadows, highlights).
DO NOT CHANGE: The background - keep it identical.

REPLACE (change this only):
ONLY CHANGE: The garment. Replace the model's current clothing with the garment from the flat-lay image.

CRITICAL: The garment from the flat-lay must NOT be modified in any way when transferring to the model.
- Use the garment EXACTLY as shown in the flat-lay image
- Same color, same texture, same patterns, same knit structure, same buttons/details
- Do not alter, adjust, or modify the garment's appearance
- The garment should fit the model's body naturally, but its visual appearance must match the flat-lay image exactly without any modifications.`

const garmentSwapQuality = `QUALITY:
Output: Professional fashion photography quality, sharp focus, high resolution, no artifacts.`

const modelVariationBase = `TASK: Modify this fashion model photograph by changing the face and adjusting the pose slightly.

REQUIREMENTS:
- CHANGE: Replace the face with a completely different face (photorealistic, professional)
- CHANGE: Adjust the pose slightly - rotate the body or head by 5-15 degrees, or shift the arm/hand position subtly
- KEEP: Same body type and proportions
- KEEP: Same lighting style and background style
- KEEP: Same clothing and overall aesthetic

QUALITY:
Output: Modified fashion model photo with different face and slightly adjusted pose, professional fashion photography quality.`

const refinementsHeader = "ADDITIONAL REFINEMENTS (apply in order):"

// Compose は Spec から送信用プロンプト文字列を組み立てます。
// 純粋関数であり、同値の Spec に対して常に同一の文字列を返します。
// 整形不能な入力は存在せず、長すぎる追加指示は切り詰めて警告のみ残します。
func Compose(spec Spec) string {
	var b strings.Builder

	switch spec.Template {
	case TemplateModelVariation:
		b.WriteString(modelVariationBase)
	default:
		b.WriteString(garmentSwapBase)
		if clause := styleClause(spec.Style); clause != "" {
			b.WriteString("\n\n")
			b.WriteString(clause)
		}
		b.WriteString("\n\n")
		b.WriteString(garmentSwapQuality)
	}

	if lines := clampRefinements(spec.Refinements); len(lines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(refinementsHeader)
		for _, line := range lines {
			b.WriteString("\n- ")
			b.WriteString(line)
		}
	}

	return b.String()
}

// styleClause は任意属性を REPLACE 節の補足記述に変換します。
// 属性が一つも無い場合は空文字列を返し、空の雛形は出力しません。
func styleClause(s Style) string {
	if s.empty() {
		return ""
	}

	var parts []string
	if s.KnitPattern != "" {
		parts = append(parts, s.KnitPattern+" pattern")
	}
	if s.Color != "" {
		parts = append(parts, s.Color+" color")
	}
	if s.Garment != "" {
		parts = append(parts, s.Garment+" style")
	}

	desc := "GARMENT DETAILS: Luxury cashmere, " + strings.Join(parts, ", ") + "."

	lower := strings.ToLower(s.KnitPattern)
	if strings.Contains(lower, "cable") {
		desc += " Prominent cable patterns with dimensional depth. Each cable ridge should be clearly defined with shadow and highlight to show 3D texture."
	}
	if strings.Contains(lower, "ribbed") {
		desc += " Precise ribbing texture with clearly defined vertical lines showing the knit structure."
	}
	desc += " The cashmere texture should show the characteristic soft, fine fiber surface with natural luster."

	return desc
}

// clampRefinements は追加指示を行単位・全体の文字数予算に収めます。
// 区切り文字に似た文字列もそのまま通します（リモートモデルは自由文として扱うため）。
func clampRefinements(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}

	out := make([]string, 0, len(lines))
	total := 0
	for _, line := range lines {
		runes := []rune(line)
		if len(runes) > MaxRefinementLineChars {
			slog.Warn("追加指示が一行の上限を超えたため切り詰めます",
				"limit", MaxRefinementLineChars, "length", len(runes))
			runes = runes[:MaxRefinementLineChars]
		}
		if total+len(runes) > MaxRefinementTotalChars {
			remain := MaxRefinementTotalChars - total
			if remain <= 0 {
				slog.Warn("追加指示が全体の上限に達したため以降を無視します",
					"limit", MaxRefinementTotalChars)
				break
			}
			runes = runes[:remain]
		}
		total += len(runes)
		out = append(out, string(runes))
	}
	return out
}
