package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// CoverResize масштабирует картинку под точный размер width x height,
// сохраняя пропорции: лишнее обрезается симметрично по центру.
func CoverResize(src *image.NRGBA, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	if srcW == 0 || srcH == 0 || width <= 0 || height <= 0 {
		return dst
	}

	srcRatio := float64(srcW) / float64(srcH)
	dstRatio := float64(width) / float64(height)

	// Выбираем центральную область исходника с целевым соотношением сторон
	cropRect := src.Bounds()
	if srcRatio > dstRatio {
		cropW := int(float64(srcH)*dstRatio + 0.5)
		offset := (srcW - cropW) / 2
		cropRect = image.Rect(offset, 0, offset+cropW, srcH)
	} else if srcRatio < dstRatio {
		cropH := int(float64(srcW)/dstRatio + 0.5)
		offset := (srcH - cropH) / 2
		cropRect = image.Rect(0, offset, srcW, offset+cropH)
	}

	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect, xdraw.Src, nil)
	return dst
}
