package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
	"github.com/littlebull/lbcs/internal/wall"
)

// OverlayAlpha is the opacity of the LED overlay.
const OverlayAlpha = 0.3

var emptyBackground = parseColor("#1e1e1e")

// Loader fetches a background image.
type Loader func(ctx context.Context, uri string) (image.Image, error)

type backgroundKey struct {
	version uint64
	width   int
}

type overlayKey struct {
	grid   uint64
	dims   uint64
	width  int
	labels bool
}

// Compositor stacks the wall photo and the LED overlay. Each layer is
// cached and only redrawn when the matching version counters change.
type Compositor struct {
	mu sync.Mutex

	load   Loader
	labels bool
	face   font.Face

	bgKey      backgroundKey
	background *image.RGBA
	sourceURI  string
	source     image.Image

	ovKey   overlayKey
	overlay image.Image

	// redraw counters, read by tests
	backgroundDraws int
	overlayDraws    int
}

// NewCompositor returns a compositor that loads backgrounds with load;
// nil uses LoadImage.
func NewCompositor(load Loader) *Compositor {
	if load == nil {
		load = LoadImage
	}
	return &Compositor{load: load}
}

// ShowLabels toggles drawing each LED's index on its cell.
func (c *Compositor) ShowLabels(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if on && c.face == nil {
		face, err := labelFace(12)
		if err != nil {
			return err
		}
		c.face = face
	}
	c.labels = on
	return nil
}

// Compose renders the view. The returned image is always usable; err
// reports a background that could not be loaded this time it was drawn,
// in which case a plain fill stands in for it.
func (c *Compositor) Compose(ctx context.Context, v wall.View) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	width := int(math.Round(v.Mapper.Width()))
	if width <= 0 {
		return nil, fmt.Errorf("invalid canvas width %v", v.Mapper.Width())
	}

	bgErr := c.drawBackground(ctx, v.Wall.ImageURI, backgroundKey{v.Versions.Background, width})
	c.drawOverlay(v, overlayKey{v.Versions.Grid, v.Versions.Dims, width, c.labels})

	out := image.NewRGBA(c.background.Bounds())
	xdraw.Copy(out, image.Point{}, c.background, c.background.Bounds(), xdraw.Src, nil)
	xdraw.Copy(out, image.Point{}, c.overlay, c.overlay.Bounds(), xdraw.Over, nil)
	return out, bgErr
}

func (c *Compositor) drawBackground(ctx context.Context, uri string, key backgroundKey) error {
	if c.background != nil && key == c.bgKey {
		return nil
	}
	c.bgKey = key
	c.backgroundDraws++

	dst := image.NewRGBA(image.Rect(0, 0, key.width, key.width))
	c.background = dst

	if uri == "" {
		fill(dst, emptyBackground)
		return nil
	}
	if uri != c.sourceURI || c.source == nil {
		src, err := c.load(ctx, uri)
		if err != nil {
			logging.Warn("Background unavailable", zap.String("uri", uri), zap.Error(err))
			c.source, c.sourceURI = nil, ""
			fill(dst, emptyBackground)
			return err
		}
		c.source, c.sourceURI = src, uri
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), c.source, c.source.Bounds(), xdraw.Src, nil)
	return nil
}

func (c *Compositor) drawOverlay(v wall.View, key overlayKey) {
	if c.overlay != nil && key == c.ovKey {
		return
	}
	c.ovKey = key
	c.overlayDraws++

	dc := gg.NewContext(key.width, key.width)
	cw, ch := v.Mapper.CellSize()
	if key.labels && c.face != nil {
		dc.SetFontFace(c.face)
	}
	for _, cell := range v.Mapper.Cells() {
		led := v.Grid.Get(cell.Index)
		dc.SetRGBA(float64(led[0])/255, float64(led[1])/255, float64(led[2])/255, OverlayAlpha)
		dc.DrawRectangle(cell.Origin.X, cell.Origin.Y, cw, ch)
		dc.Fill()

		if key.labels && c.face != nil {
			dc.SetRGBA(1, 1, 1, 0.8)
			dc.DrawStringAnchored(strconv.Itoa(cell.Index), cell.Origin.X+cw/2, cell.Origin.Y+ch/2, 0.5, 0.5)
		}
	}
	c.overlay = dc.Image()
}

// CellColors samples the average colour of every cell of a composed
// image, in LED index order.
func CellColors(img image.Image, m grid.Mapper) []colorful.Color {
	cw, ch := m.CellSize()
	bounds := img.Bounds()
	out := make([]colorful.Color, 0, m.Len())
	for _, cell := range m.Cells() {
		r := image.Rect(
			int(math.Floor(cell.Origin.X)), int(math.Floor(cell.Origin.Y)),
			int(math.Floor(cell.Origin.X+cw)), int(math.Floor(cell.Origin.Y+ch)),
		).Intersect(bounds)
		out = append(out, average(img, r))
	}
	return out
}

func average(img image.Image, r image.Rectangle) colorful.Color {
	if r.Empty() {
		return colorful.Color{}
	}
	var sr, sg, sb float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += float64(cr)
			sg += float64(cg)
			sb += float64(cb)
		}
	}
	n := float64(r.Dx()*r.Dy()) * 0xffff
	return colorful.Color{R: sr / n, G: sg / n, B: sb / n}
}

// SavePNG writes a composed image to path.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func fill(dst *image.RGBA, c color.Color) {
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

func parseColor(hex string) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.Black
	}
	return c
}
