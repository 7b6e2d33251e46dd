package batch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/garment-swap-kit/pkg/domain"
	"github.com/shouni/garment-swap-kit/pkg/prompt"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// DiscoverImages は指定エリアの画像参照を列挙します。
// gs:// の場合は reader 経由で、それ以外はローカルディレクトリとして走査します。
// 結果は決定的な順序（名前順）で返します。
func DiscoverImages(ctx context.Context, reader remoteio.InputReader, area string) ([]domain.ImageRef, error) {
	var names []string

	if strings.HasPrefix(area, "gs://") {
		err := reader.List(ctx, area, func(name string) error {
			names = append(names, name)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(area)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			names = append(names, filepath.Join(area, e.Name()))
		}
	}

	refs := make([]domain.ImageRef, 0, len(names))
	for _, name := range names {
		if imageExtensions[strings.ToLower(filepath.Ext(name))] {
			refs = append(refs, domain.ImageRef(name))
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

// PairWithFlatLay は複数のモデル写真を一枚の平置き写真と組み合わせた要求列を作ります。
// 同じプロンプト仕様を全件に適用します（一括での衣服差し替え用途）。
func PairWithFlatLay(models []domain.ImageRef, flatlay domain.ImageRef, spec prompt.Spec) []domain.SwapRequest {
	reqs := make([]domain.SwapRequest, 0, len(models))
	for _, m := range models {
		reqs = append(reqs, domain.SwapRequest{
			ModelImage:   m,
			FlatLayImage: flatlay,
			Prompt:       spec,
		})
	}
	return reqs
}
