package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
)

// FormatPNG / FormatJPEG は出力フォーマット指定子です。
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
)

// Dimensions は画像ヘッダーのみを読み、幅と高さを返します。
// 全デコードを避けるため image.DecodeConfig を使用します。
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Decode は画像データをデコードし、デコード結果と元フォーマット名を返します。
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// Encode は画像を指定フォーマットで符号化します。
// quality は FormatJPEG のときのみ意味を持ちます（1〜100）。
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	switch format {
	case FormatPNG:
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
	case FormatJPEG, "jpeg":
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("未対応の出力フォーマットです: %s", format)
	}
	return buf.Bytes(), nil
}

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Encode(img, FormatJPEG, quality)
}
