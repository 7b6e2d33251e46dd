package imgutil

import (
	"image"

	"golang.org/x/image/draw"
)

// ResizeToMax は長辺が maxDim を超える画像を、縦横比を保ったまま縮小します。
// maxDim 以内の画像は再符号化せずそのまま返します。拡大は行いません。
// 縮小後は元フォーマットを維持して再符号化します（JPEG の品質は quality）。
func ResizeToMax(data []byte, maxDim, quality int) ([]byte, error) {
	w, h, err := Dimensions(data)
	if err != nil {
		return nil, err
	}
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return data, nil
	}

	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	nw, nh := fitWithin(w, h, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	outFormat := FormatJPEG
	if format == "png" {
		outFormat = FormatPNG
	}
	return Encode(dst, outFormat, quality)
}

// fitWithin は長辺を maxDim に合わせた縮小後の寸法を計算します。
// いずれの辺も最低 1px を保証します。
func fitWithin(w, h, maxDim int) (int, int) {
	longer := w
	if h > w {
		longer = h
	}
	nw := w * maxDim / longer
	nh := h * maxDim / longer
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
