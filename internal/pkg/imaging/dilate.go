package imaging

import (
	"image"
	"image/draw"
)

// DilateAlpha морфологическая дилатация альфа-канала: каждому пикселю
// присваивается максимум альфы в круговой окрестности радиуса radius
// (проверка по квадрату евклидова расстояния). Как только найден сосед
// с полной непрозрачностью, дальше искать нечего.
func DilateAlpha(alpha []uint8, w, h, radius int) []uint8 {
	out := make([]uint8, w*h)
	r2 := radius * radius

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var maxVal uint8

			yMin := max(0, y-radius)
			yMax := min(h-1, y+radius)
			xMin := max(0, x-radius)
			xMax := min(w-1, x+radius)

			for ny := yMin; ny <= yMax; ny++ {
				dy := ny - y
				dy2 := dy * dy
				for nx := xMin; nx <= xMax; nx++ {
					dx := nx - x
					if dx*dx+dy2 <= r2 {
						if val := alpha[ny*w+nx]; val > maxVal {
							maxVal = val
							if maxVal == 255 {
								break
							}
						}
					}
				}
				if maxVal == 255 {
					break
				}
			}
			out[y*w+x] = maxVal
		}
	}
	return out
}

// WhiteBorder добавляет белую обводку вокруг непрозрачной части картинки:
// дилатированная альфа даёт маску, белый слой кладётся ПОД оригинал,
// прозрачные поля обрезаются, результат вписывается в каноничный квадрат.
// Ширина обводки одинаковая независимо от формы силуэта.
func WhiteBorder(src *image.NRGBA, borderWidth int) *image.NRGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()

	alpha := make([]uint8, w*h)
	for i := 0; i < w*h; i++ {
		alpha[i] = src.Pix[i*4+3]
	}

	dilated := DilateAlpha(alpha, w, h, borderWidth)

	// Белый слой с дилатированной альфой — мягкие края сохраняются
	border := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		if dilated[i] > 0 {
			border.Pix[i*4] = 255
			border.Pix[i*4+1] = 255
			border.Pix[i*4+2] = 255
			border.Pix[i*4+3] = dilated[i]
		}
	}

	// Оригинал поверх белой подложки
	draw.Draw(border, border.Bounds(), src, image.Point{}, draw.Over)

	trimmed := trimTransparent(border, 2)
	return containResize(trimmed, CanonicalSize)
}
