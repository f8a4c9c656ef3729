package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

// renderTrailANSI draws the trail as a strip of half-block cells with the
// wagon placed at progress (0..1). Narrow terminals get a plain bar.
func renderTrailANSI(progress float64, widthChars, heightRows int) string {
	progress = clampFloat(progress, 0, 1)
	if widthChars < 24 || heightRows < 3 {
		return trailASCII(progress, max(widthChars, 12))
	}
	widthChars = min(widthChars, 96)
	heightRows = min(heightRows, 8)

	w := widthChars
	h := heightRows * 2
	dc := gg.NewContext(w, h)
	dc.SetRGBA(0, 0, 0, 0)
	dc.Clear()

	ground := float64(h) * 0.8
	travelled := color.RGBA{R: 0, G: 230, B: 110, A: 235}
	ahead := color.RGBA{R: 0, G: 110, B: 50, A: 200}
	wagon := color.RGBA{R: 200, G: 255, B: 200, A: 255}

	// Rolling prairie behind the trail.
	dc.SetRGBA(0, 0.35, 0.12, 0.35)
	for x := 0; x < w; x++ {
		y := ground - 2 - 1.5*math.Sin(float64(x)/5.0)
		dc.DrawLine(float64(x), y, float64(x), ground)
		dc.Stroke()
	}

	wagonX := lerp(1, float64(w-2), progress)
	dc.SetLineWidth(1.5)
	dc.SetColor(ahead)
	dc.DrawLine(wagonX, ground, float64(w-1), ground)
	dc.Stroke()
	dc.SetColor(travelled)
	dc.DrawLine(0, ground, wagonX, ground)
	dc.Stroke()

	// Landmarks every quarter of the way.
	for i := 1; i < 4; i++ {
		x := lerp(1, float64(w-2), float64(i)/4)
		dc.SetColor(ahead)
		if x <= wagonX {
			dc.SetColor(travelled)
		}
		dc.DrawCircle(x, ground-1, 1.2)
		dc.Fill()
	}

	top := ground - float64(h)*0.45
	dc.SetColor(wagon)
	dc.DrawRoundedRectangle(wagonX-2.5, top, 5, ground-top-1, 1.5)
	dc.Fill()

	return rgbaImageToANSIHalfBlocks(dc.Image())
}

func trailASCII(progress float64, width int) string {
	inner := width - 2
	pos := int(math.Round(progress * float64(inner-1)))
	return "[" + strings.Repeat("=", pos) + ">" + strings.Repeat(" ", inner-pos-1) + "]"
}

func rgbaImageToANSIHalfBlocks(img image.Image) string {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return ""
	}

	var out strings.Builder
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			tr, tg, tb, ta := rgba8(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			br, bg, bb, ba := uint8(0), uint8(0), uint8(0), uint8(0)
			if y+1 < height {
				br, bg, bb, ba = rgba8(img.At(bounds.Min.X+x, bounds.Min.Y+y+1))
			}
			if ta < 8 && ba < 8 {
				out.WriteByte(' ')
				continue
			}
			out.WriteString(fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", tr, tg, tb, br, bg, bb))
		}
		out.WriteString("\x1b[0m\n")
	}
	return out.String()
}

func rgba8(c color.Color) (r, g, b, a uint8) {
	r16, g16, b16, a16 := c.RGBA()
	return uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8), uint8(a16 >> 8)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampFloat(v, minV, maxV float64) float64 {
	return math.Min(maxV, math.Max(minV, v))
}
