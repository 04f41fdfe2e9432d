package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// BadgePosition позиция бейджа на картинке
type BadgePosition string

const (
	BadgeTop    BadgePosition = "top"
	BadgeBottom BadgePosition = "bottom"
)

const (
	badgeMaxTextLen = 30
	badgeHeight     = 52
	badgePadding    = 24
	badgeMinWidth   = 80
	badgeMaxWidth   = 500
	badgeMargin     = 6
	badgeCornerR    = 14
	badgeOpacity    = 235 // ~0.92
)

// TruncateBadgeText обрезает текст бейджа до максимума с многоточием
func TruncateBadgeText(text string) string {
	runes := []rune(text)
	if len(runes) > badgeMaxTextLen {
		return string(runes[:badgeMaxTextLen-3]) + "..."
	}
	return string(runes)
}

// BadgeFontSize размер шрифта по длине текста: короче текст — крупнее шрифт
func BadgeFontSize(textLen int) int {
	switch {
	case textLen <= 8:
		return 36
	case textLen <= 15:
		return 30
	case textLen <= 22:
		return 26
	default:
		return 22
	}
}

// BadgeWidth ширина бейджа под текст с отступами, с обеих сторон
// ограничена минимумом и максимумом. Ширина символа фиксированная
// (от самого крупного шрифта), чтобы ширина бейджа монотонно росла
// с длиной текста независимо от выбранного размера шрифта.
func BadgeWidth(textLen int) int {
	const charWidth = 36 * 0.6
	width := int(float64(textLen)*charWidth) + badgePadding*2
	if width < badgeMinWidth {
		return badgeMinWidth
	}
	if width > badgeMaxWidth {
		return badgeMaxWidth
	}
	return width
}

// TextBadge накладывает полупрозрачный белый бейдж с центрированным текстом
// на каноничный квадрат. Шрифт вшит в бинарь (gofont), системные шрифты
// не нужны.
func TextBadge(src *image.NRGBA, text string, position BadgePosition) (*image.NRGBA, error) {
	displayText := TruncateBadgeText(text)
	textLen := len([]rune(displayText))

	fontSize := BadgeFontSize(textLen)
	rectWidth := BadgeWidth(textLen)
	rectX := (CanonicalSize - rectWidth) / 2

	var rectY int
	if position == BadgeTop {
		rectY = badgeMargin
	} else {
		rectY = CanonicalSize - badgeHeight - badgeMargin
	}

	dst := containResize(src, CanonicalSize)

	drawRoundedRect(dst,
		image.Rect(rectX, rectY, rectX+rectWidth, rectY+badgeHeight),
		badgeCornerR,
		color.NRGBA{R: 255, G: 255, B: 255, A: badgeOpacity},
	)

	face, err := newBadgeFace(fontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare badge font: %w", err)
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 255}),
		Face: face,
	}

	textWidth := drawer.MeasureString(displayText)
	baseline := rectY + badgeHeight/2 + int(float64(fontSize)*0.35)
	drawer.Dot = fixed.Point26_6{
		X: fixed.I(CanonicalSize/2) - textWidth/2,
		Y: fixed.I(baseline),
	}
	drawer.DrawString(displayText)

	return dst, nil
}

// newBadgeFace создаёт face вшитого шрифта нужного размера
func newBadgeFace(size int) (font.Face, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawRoundedRect заливает прямоугольник со скруглёнными углами поверх dst
func drawRoundedRect(dst *image.NRGBA, rect image.Rectangle, radius int, fill color.NRGBA) {
	layer := image.NewNRGBA(rect)
	r2 := radius * radius

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if insideRounded(x, y, rect, radius, r2) {
				layer.SetNRGBA(x, y, fill)
			}
		}
	}

	draw.Draw(dst, rect, layer, rect.Min, draw.Over)
}

// insideRounded проверяет, лежит ли пиксель внутри скруглённого прямоугольника
func insideRounded(x, y int, rect image.Rectangle, radius, r2 int) bool {
	left := rect.Min.X + radius
	right := rect.Max.X - radius - 1
	top := rect.Min.Y + radius
	bottom := rect.Max.Y - radius - 1

	cx, cy := x, y
	switch {
	case x < left && y < top:
		cx, cy = left, top
	case x > right && y < top:
		cx, cy = right, top
	case x < left && y > bottom:
		cx, cy = left, bottom
	case x > right && y > bottom:
		cx, cy = right, bottom
	default:
		return true
	}

	dx := x - cx
	dy := y - cy
	return dx*dx+dy*dy <= r2
}
