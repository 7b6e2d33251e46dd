package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_BaseTemplate(t *testing.T) {
	t.Run("属性も追加指示も無い場合は基礎テンプレートそのものを返すのだ", func(t *testing.T) {
		got := Compose(Spec{})

		want := garmentSwapBase + "\n\n" + garmentSwapQuality
		assert.Equal(t, want, got, "golden value must be byte-stable")
		assert.NotContains(t, got, refinementsHeader)
		assert.NotContains(t, got, "GARMENT DETAILS")
	})

	t.Run("三つの節がすべて含まれるのだ", func(t *testing.T) {
		got := Compose(Spec{})
		assert.Contains(t, got, "PRESERVE (keep identical):")
		assert.Contains(t, got, "REPLACE (change this only):")
		assert.Contains(t, got, "QUALITY:")
	})

	t.Run("顔・ポーズ変更テンプレートを選択できるのだ", func(t *testing.T) {
		got := Compose(Spec{Template: TemplateModelVariation})
		assert.Equal(t, modelVariationBase, got)
	})
}

func TestCompose_Determinism(t *testing.T) {
	spec := Spec{
		Style:       Style{Color: "camel", Garment: "turtleneck", KnitPattern: "cable knit"},
		Refinements: []string{"keep the collar shape", "match the cuff ribbing"},
	}

	first := Compose(spec)
	second := Compose(spec)
	require.Equal(t, first, second, "composing twice must yield identical text")
}

func TestCompose_StyleAttributes(t *testing.T) {
	t.Run("指定した属性だけが記述に現れるのだ", func(t *testing.T) {
		got := Compose(Spec{Style: Style{Color: "beige"}})

		assert.Contains(t, got, "beige color")
		assert.NotContains(t, got, " pattern,")
		assert.NotContains(t, got, " style.")
	})

	t.Run("ケーブル編みの場合は質感の補足が付くのだ", func(t *testing.T) {
		got := Compose(Spec{Style: Style{KnitPattern: "cable knit"}})
		assert.Contains(t, got, "cable knit pattern")
		assert.Contains(t, got, "cable ridge")
	})

	t.Run("リブ編みの場合は縦線の補足が付くのだ", func(t *testing.T) {
		got := Compose(Spec{Style: Style{KnitPattern: "ribbed"}})
		assert.Contains(t, got, "ribbing texture")
	})
}

func TestCompose_Refinements(t *testing.T) {
	t.Run("追加指示は与えた順序のまま並ぶのだ", func(t *testing.T) {
		got := Compose(Spec{Refinements: []string{"A", "B"}})

		posHeader := strings.Index(got, refinementsHeader)
		posA := strings.Index(got, "- A")
		posB := strings.Index(got, "- B")
		require.GreaterOrEqual(t, posHeader, 0)
		assert.Less(t, posHeader, posA)
		assert.Less(t, posA, posB, "A must appear before B")
		assert.Equal(t, 1, strings.Count(got, refinementsHeader), "header must appear exactly once")
	})

	t.Run("空の追加指示リストでは節ごと省略されるのだ", func(t *testing.T) {
		got := Compose(Spec{Refinements: []string{}})
		assert.NotContains(t, got, refinementsHeader)
	})

	t.Run("区切り文字に似た追加指示もそのまま通すのだ", func(t *testing.T) {
		line := "PRESERVE (keep identical): the hem length"
		got := Compose(Spec{Refinements: []string{line}})
		assert.Contains(t, got, "- "+line)
	})

	t.Run("一行の上限を超えた指示は決定的に切り詰められるのだ", func(t *testing.T) {
		long := strings.Repeat("x", MaxRefinementLineChars+100)
		first := Compose(Spec{Refinements: []string{long}})
		second := Compose(Spec{Refinements: []string{long}})

		assert.Equal(t, first, second)
		assert.Contains(t, first, strings.Repeat("x", MaxRefinementLineChars))
		assert.NotContains(t, first, strings.Repeat("x", MaxRefinementLineChars+1))
	})

	t.Run("全体の上限に達した以降の指示は落ちるのだ", func(t *testing.T) {
		filler := strings.Repeat("y", MaxRefinementLineChars)
		var lines []string
		for i := 0; i < MaxRefinementTotalChars/MaxRefinementLineChars+2; i++ {
			lines = append(lines, filler)
		}
		lines = append(lines, "sentinel-line")

		got := Compose(Spec{Refinements: lines})
		assert.NotContains(t, got, "sentinel-line")
	})
}

func TestSpec_WithRefinements(t *testing.T) {
	base := Spec{Refinements: []string{"A"}}
	derived := base.WithRefinements("B")

	assert.Equal(t, []string{"A"}, base.Refinements, "original spec must not mutate")
	assert.Equal(t, []string{"A", "B"}, derived.Refinements)
}
