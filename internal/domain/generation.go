package domain

import (
	"strconv"
	"strings"
)

const (
	DefaultAspectRatio = "1:1"
	DefaultQuality     = "fhd"
)

// qualityMaxSide качество -> максимальная сторона результата в пикселях
var qualityMaxSide = map[string]int{
	"fhd": 1920,
	"2k":  2560,
	"4k":  3840,
}

// GenerationParams параметры одной генерации
type GenerationParams struct {
	Model       string
	AspectRatio string
	Quality     string
}

// ParseAspectRatio разбирает строку вида "16:9" в пару сторон.
// Любой некорректный формат даёт квадрат 1:1.
func ParseAspectRatio(ratio string) (w, h int) {
	parts := strings.Split(ratio, ":")
	if len(parts) == 2 {
		pw, errW := strconv.Atoi(parts[0])
		ph, errH := strconv.Atoi(parts[1])
		if errW == nil && errH == nil && pw > 0 && ph > 0 {
			return pw, ph
		}
	}
	return 1, 1
}

// OutputDimensions вычисляет размеры результата: качество задаёт
// максимальную сторону, аспект — соотношение ширины к высоте.
func (p GenerationParams) OutputDimensions() (width, height int) {
	maxSide, ok := qualityMaxSide[p.Quality]
	if !ok {
		maxSide = qualityMaxSide[DefaultQuality]
	}

	w, h := ParseAspectRatio(p.AspectRatio)
	if w >= h {
		// Альбомная ориентация или квадрат: ширина = maxSide
		return maxSide, int(float64(maxSide)*float64(h)/float64(w) + 0.5)
	}
	return int(float64(maxSide)*float64(w)/float64(h) + 0.5), maxSide
}
