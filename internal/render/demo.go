package render

import (
	"image"
	"math/rand"

	"github.com/fogleman/gg"
)

const demoSize = 600

var holdColors = []string{"#e8c547", "#3c91e6", "#d7263d", "#1b998b", "#f46036", "#efefef"}

// DemoBoard draws a plywood board with bolt holes and scattered holds.
// The layout is fixed so every render of the demo wall matches.
func DemoBoard(size int) image.Image {
	dc := gg.NewContext(size, size)
	s := float64(size)

	grad := gg.NewLinearGradient(0, 0, 0, s)
	grad.AddColorStop(0, parseColor("#8a6a45"))
	grad.AddColorStop(1, parseColor("#5c4329"))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, s, s)
	dc.Fill()

	// panel seams
	dc.SetHexColor("#4a3520")
	dc.SetLineWidth(2)
	for _, f := range []float64{1.0 / 3, 2.0 / 3} {
		dc.DrawLine(0, s*f, s, s*f)
		dc.Stroke()
	}

	// t-nut grid
	step := s / 18
	dc.SetHexColor("#2b1d10")
	for y := step / 2; y < s; y += step {
		for x := step / 2; x < s; x += step {
			dc.DrawCircle(x, y, s/300+1)
			dc.Fill()
		}
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 40; i++ {
		x := step/2 + float64(rng.Intn(18))*step
		y := step/2 + float64(rng.Intn(18))*step
		r := step * (0.3 + rng.Float64()*0.35)
		dc.SetHexColor(holdColors[rng.Intn(len(holdColors))])
		dc.DrawEllipse(x, y, r, r*(0.7+rng.Float64()*0.3))
		dc.Fill()
		dc.SetRGBA(0, 0, 0, 0.35)
		dc.SetLineWidth(1)
		dc.DrawEllipse(x, y, r, r*0.8)
		dc.Stroke()
	}
	return dc.Image()
}
