package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"strings"
	"unicode"
	"unicode/utf8"

	"docvault/internal/doctypes"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Category banner colors. Each category must stay visually distinct.
var categoryColors = map[doctypes.RenderCategory]color.NRGBA{
	doctypes.RenderImage: {R: 38, G: 166, B: 154, A: 255},
	doctypes.RenderPDF:   {R: 229, G: 57, B: 53, A: 255},
	doctypes.RenderVideo: {R: 94, G: 53, B: 177, A: 255},
	doctypes.RenderOther: {R: 84, G: 110, B: 122, A: 255},
}

var categoryLabels = map[doctypes.RenderCategory]string{
	doctypes.RenderImage: "IMAGE",
	doctypes.RenderPDF:   "PDF",
	doctypes.RenderVideo: "VIDEO",
	doctypes.RenderOther: "FILE",
}

// IconComposer draws deterministic placeholder thumbnails. It is the
// guaranteed fallback for every other renderer, so Compose has no failure
// mode: same inputs always yield the same well-formed JPEG.
type IconComposer struct {
	font *truetype.Font
}

// NewIconComposer parses the embedded fallback font.
func NewIconComposer() (*IconComposer, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &IconComposer{font: f}, nil
}

// Compose draws a placeholder for the given category. For text payloads a
// short excerpt of the content is overlaid on the page body.
func (c *IconComposer) Compose(category doctypes.RenderCategory, req Request) []byte {
	w, h := req.Width, req.Height
	if w < 64 {
		w = 64
	}
	if h < 64 {
		h = 64
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	// Canvas background.
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.NRGBA{R: 236, G: 239, B: 241, A: 255}}, image.Point{}, draw.Src)

	// Page sheet with a thin border, inset from the canvas edges.
	margin := w / 10
	if hm := h / 10; hm < margin {
		margin = hm
	}
	page := image.Rect(margin, margin, w-margin, h-margin)
	border := page.Inset(-1)
	draw.Draw(img, border, &image.Uniform{C: color.NRGBA{R: 176, G: 190, B: 197, A: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, page, &image.Uniform{C: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}, image.Point{}, draw.Src)

	// Folded corner in the page's top right.
	fold := page.Dx() / 5
	for y := 0; y < fold; y++ {
		for x := 0; x < fold-y; x++ {
			img.SetNRGBA(page.Max.X-1-x, page.Min.Y+y, color.NRGBA{R: 207, G: 216, B: 220, A: 255})
		}
	}

	// Category banner across the lower third of the page.
	bannerH := page.Dy() / 4
	banner := image.Rect(page.Min.X, page.Max.Y-bannerH-page.Dy()/8, page.Max.X, page.Max.Y-page.Dy()/8)
	draw.Draw(img, banner, &image.Uniform{C: categoryColors[category]}, image.Point{}, draw.Src)

	label := categoryLabels[category]
	labelSize := float64(bannerH) * 0.55
	labelWidth := estimateWidth(label, labelSize)
	labelX := banner.Min.X + (banner.Dx()-labelWidth)/2
	labelY := banner.Min.Y + bannerH/2 + int(labelSize*0.35)
	c.drawText(img, label, labelX, labelY, labelSize, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	if doctypes.IsText(req.MimeType) {
		lines := textExcerpt(req.Data, page.Dx())
		excerptSize := float64(page.Dy()) / 18
		if excerptSize < 8 {
			excerptSize = 8
		}
		y := page.Min.Y + fold + int(excerptSize)
		for _, line := range lines {
			if y >= banner.Min.Y-int(excerptSize)/2 {
				break
			}
			c.drawText(img, line, page.Min.X+page.Dx()/12, y, excerptSize, color.NRGBA{R: 69, G: 90, B: 100, A: 255})
			y += int(excerptSize * 1.5)
		}
	}

	var buf bytes.Buffer
	// Encoding an in-memory NRGBA to a bytes.Buffer cannot fail.
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	return buf.Bytes()
}

func (c *IconComposer) drawText(dst *image.NRGBA, text string, x, y int, size float64, col color.NRGBA) {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(c.font)
	ctx.SetFontSize(size)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(&image.Uniform{C: col})
	ctx.SetHinting(font.HintingFull)

	if _, err := ctx.DrawString(text, freetype.Pt(x, y)); err != nil {
		// Text is decorative; the placeholder is still well-formed
		// without it.
		return
	}
}

// estimateWidth approximates rendered text width for centering.
func estimateWidth(text string, size float64) int {
	return int(float64(utf8.RuneCountInString(text)) * size * 0.6)
}

// textExcerpt extracts the first few printable lines of a text payload,
// wrapped to fit the page width. Binary-looking content yields nothing.
func textExcerpt(data []byte, pageWidth int) []string {
	const maxSample = 512
	if len(data) > maxSample {
		data = data[:maxSample]
	}
	if !utf8.Valid(data) {
		return nil
	}

	maxCols := pageWidth / 7
	if maxCols < 8 {
		maxCols = 8
	}
	const maxLines = 7

	var lines []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.Map(func(r rune) rune {
			if unicode.IsPrint(r) || r == ' ' {
				return r
			}
			return -1
		}, strings.TrimRight(raw, "\r"))

		for {
			if len(lines) >= maxLines {
				return lines
			}
			if utf8.RuneCountInString(line) <= maxCols {
				lines = append(lines, line)
				break
			}
			runes := []rune(line)
			lines = append(lines, string(runes[:maxCols]))
			line = string(runes[maxCols:])
		}
	}
	return lines
}
