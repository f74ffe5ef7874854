package qrcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// defaultSize is the size in pixels used when no size is specified
const defaultSize = 256

// MediaTypePNG and MediaTypeSVG are the media types of the two representations.
const (
	MediaTypePNG = "image/png"
	MediaTypeSVG = "image/svg+xml;charset=utf-8"
)

// Config describes one symbol: what to encode and how to render it.
// It is a value type; callers replace it wholesale.
type Config struct {
	Payload    string
	Size       int // output width and height in pixels
	Level      Level
	Foreground color.NRGBA
	Background color.NRGBA
	QuietZone  int // blank border, in modules
}

// Matrix encodes payload and returns the borderless module matrix,
// indexed [row][column], true for dark modules.
func Matrix(payload string, level Level) ([][]bool, error) {
	if payload == "" {
		return nil, ErrEmptyContent
	}
	if !level.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, string(level))
	}

	q, err := skipqrcode.New(payload, level.recovery())
	if err != nil {
		// The library reports overflow as a plain error string.
		if strings.Contains(err.Error(), "too long") {
			return nil, errors.Join(ErrCapacityExceeded, err)
		}
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

// Raster renders cfg into a new Size x Size image.
func Raster(ctx context.Context, cfg Config) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := Matrix(cfg.Payload, cfg.Level)
	if err != nil {
		return nil, err
	}

	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	paint(img, m, cfg.QuietZone, cfg.Foreground, cfg.Background)
	return img, nil
}

// paint fills img with the matrix surrounded by quietZone blank modules.
// Pixel p maps onto module floor(p*n/size) - quietZone where n is the module
// count including the quiet zone on both sides.
func paint(img *image.NRGBA, m [][]bool, quietZone int, fg, bg color.NRGBA) {
	size := img.Bounds().Dx()
	qz := max(quietZone, 0)
	n := len(m) + 2*qz

	index := make([]int, size)
	for p := range size {
		index[p] = p*n/size - qz
	}

	for y := range size {
		my := index[y]
		for x := range size {
			mx := index[x]
			c := bg
			if my >= 0 && my < len(m) && mx >= 0 && mx < len(m) && m[my][mx] {
				c = fg
			}
			img.SetNRGBA(x, y, c)
		}
	}
}

// Vector renders cfg as a self-contained SVG document.
func Vector(ctx context.Context, cfg Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m, err := Matrix(cfg.Payload, cfg.Level)
	if err != nil {
		return "", err
	}

	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}
	qz := max(cfg.QuietZone, 0)
	n := len(m) + 2*qz

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, n, n)
	fmt.Fprintf(&b, `<path fill="%s"%s d="M0 0h%dv%dH0z"/>`,
		svgColor(cfg.Background), svgOpacity("fill-opacity", cfg.Background), n, n)

	b.WriteString(`<path fill="`)
	b.WriteString(svgColor(cfg.Foreground))
	b.WriteString(`"`)
	b.WriteString(svgOpacity("fill-opacity", cfg.Foreground))
	b.WriteString(` d="`)
	for y, row := range m {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			run := 0
			for x+run < len(row) && row[x+run] {
				run++
			}
			fmt.Fprintf(&b, "M%d %dh%dv1h-%dz", x+qz, y+qz, run, run)
			x += run
		}
	}
	b.WriteString(`"/></svg>`)
	b.WriteByte('\n')

	return b.String(), nil
}

func svgColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func svgOpacity(attr string, c color.NRGBA) string {
	if c.A == 0xff {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, attr, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
}

// Generator is the encoding capability consumed by the derivation pipeline.
type Generator struct{}

// NewGenerator returns a Generator backed by github.com/skip2/go-qrcode.
func NewGenerator() *Generator { return &Generator{} }

// Raster implements the raster half of the encoding capability.
func (Generator) Raster(ctx context.Context, cfg Config) (*image.NRGBA, error) {
	return Raster(ctx, cfg)
}

// Vector implements the vector half of the encoding capability.
func (Generator) Vector(ctx context.Context, cfg Config) (string, error) {
	return Vector(ctx, cfg)
}

// EncodePNG serializes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, ErrEmptyContent
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Join(ErrorFailedToGenerateQRCode, err)
	}
	return buf.Bytes(), nil
}

// DataURI returns a base64 data URI for PNG bytes, suitable for an <img> tag.
//
// Usage:
//
//	img, _ := qrcode.Raster(ctx, cfg)
//	data, _ := qrcode.EncodePNG(img)
//	uri := qrcode.DataURI(data) // <img src="{{.QrCode}}">
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}
