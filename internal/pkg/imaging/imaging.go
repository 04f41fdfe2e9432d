// Package imaging содержит детерминированную пост-обработку сгенерированных
// картинок: дилатацию альфа-канала для белой обводки, текстовый бейдж и
// ресайз под выбранное качество/аспект. Все функции чистые: одинаковый вход
// даёт одинаковый результат.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// CanonicalSize каноничный размер стороны для обводки и бейджа
const CanonicalSize = 512

// Decode декодирует png/jpeg/webp в NRGBA
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return toNRGBA(img), nil
}

// EncodePNG кодирует картинку в PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// toNRGBA приводит картинку к NRGBA с нулевой базой координат
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// trimTransparent обрезает полностью прозрачные поля.
// Пиксели с альфой <= threshold считаются пустыми.
func trimTransparent(img *image.NRGBA, threshold uint8) *image.NRGBA {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X-1, bounds.Min.Y-1

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.NRGBAAt(x, y).A > threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < minX || maxY < minY {
		// Полностью прозрачная картинка, обрезать нечего
		return img
	}

	cropped := image.NewNRGBA(image.Rect(0, 0, maxX-minX+1, maxY-minY+1))
	draw.Draw(cropped, cropped.Bounds(), img, image.Pt(minX, minY), draw.Src)
	return cropped
}

// containResize вписывает картинку в квадрат size x size с прозрачными полями
func containResize(src *image.NRGBA, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))

	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return dst
	}

	var w, h int
	if srcW >= srcH {
		w = size
		h = int(float64(size)*float64(srcH)/float64(srcW) + 0.5)
	} else {
		h = size
		w = int(float64(size)*float64(srcW)/float64(srcH) + 0.5)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	offsetX := (size - w) / 2
	offsetY := (size - h) / 2
	target := image.Rect(offsetX, offsetY, offsetX+w, offsetY+h)
	xdraw.CatmullRom.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
	return dst
}
