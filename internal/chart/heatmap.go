package chart

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// coolwarm anchors: blue at -1, light grey at 0, red at +1.
var (
	coolLow  = color.RGBA{R: 59, G: 76, B: 192, A: 255}
	coolMid  = color.RGBA{R: 221, G: 221, B: 221, A: 255}
	coolHigh = color.RGBA{R: 180, G: 4, B: 38, A: 255}
	nanCell  = color.RGBA{R: 160, G: 160, B: 160, A: 255}
)

const (
	glyphW     = 7 // basicfont.Face7x13 advance
	glyphH     = 13
	heatMargin = 16
	legendW    = 60
)

// Heatmap draws an annotated correlation matrix with a colour legend.
// go-chart has no matrix series, so the cells are painted directly.
func (g *GoChart) Heatmap(w io.Writer, spec HeatmapSpec) error {
	n := len(spec.Labels)
	if n == 0 || len(spec.Values) != n {
		return ErrNoData
	}

	labelW := 0
	for _, l := range spec.Labels {
		if lw := len([]rune(l)) * glyphW; lw > labelW {
			labelW = lw
		}
	}
	if maxLabel := g.Width / 4; labelW > maxLabel {
		labelW = maxLabel
	}

	top := heatMargin*2 + glyphH
	left := heatMargin + labelW + 8
	bottom := heatMargin + glyphH + 8
	cell := min((g.Width-left-legendW-heatMargin)/n, (g.Height-top-bottom)/n)
	if cell < 4 {
		cell = 4
	}

	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	drawText(img, spec.Title, (g.Width-textWidth(spec.Title))/2, heatMargin+glyphH, color.Black)

	maxChars := max(1, cell/glyphW)
	for i, row := range spec.Values {
		y0 := top + i*cell
		drawText(img, clip(spec.Labels[i], labelW/glyphW), heatMargin, y0+cell/2+glyphH/3, color.Black)
		for j := 0; j < n; j++ {
			v := math.NaN()
			if j < len(row) {
				v = row[j]
			}
			x0 := left + j*cell
			fill := nanCell
			if !math.IsNaN(v) {
				fill = coolwarm(v)
			}
			draw.Draw(img, image.Rect(x0, y0, x0+cell-1, y0+cell-1), image.NewUniform(fill), image.Point{}, draw.Src)

			label := annotation(v)
			if textWidth(label) < cell-2 {
				ink := color.Color(color.Black)
				if !math.IsNaN(v) && math.Abs(v) > 0.6 {
					ink = color.White
				}
				drawText(img, label, x0+(cell-textWidth(label))/2, y0+cell/2+glyphH/3, ink)
			}
		}
	}

	for j, l := range spec.Labels {
		l = clip(l, maxChars)
		x := left + j*cell + (cell-textWidth(l))/2
		drawText(img, l, x, top+n*cell+glyphH+4, color.Black)
	}

	drawLegend(img, left+n*cell+heatMargin, top, n*cell)

	return png.Encode(w, img)
}

// drawLegend paints a vertical -1..1 colour bar with end and midpoint labels.
func drawLegend(img *image.RGBA, x, y, h int) {
	const barW = 14
	if h < 3 {
		return
	}
	for dy := 0; dy < h; dy++ {
		v := 1 - 2*float64(dy)/float64(h-1)
		draw.Draw(img, image.Rect(x, y+dy, x+barW, y+dy+1), image.NewUniform(coolwarm(v)), image.Point{}, draw.Src)
	}
	drawText(img, "1", x+barW+4, y+glyphH/2, color.Black)
	drawText(img, "0", x+barW+4, y+h/2+glyphH/3, color.Black)
	drawText(img, "-1", x+barW+4, y+h, color.Black)
}

// coolwarm maps [-1, 1] onto a diverging blue-grey-red ramp centred on 0.
func coolwarm(v float64) color.RGBA {
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerp(coolMid, coolLow, -v)
	}
	return lerp(coolMid, coolHigh, v)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func annotation(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

// clip shortens s to n runes, marking the cut with "~".
func clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "~"
}

// drawText writes s with its baseline at y.
func drawText(img *image.RGBA, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}
