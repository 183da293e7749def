// Package render draws a wall as an image: the wall photo scaled to a
// square canvas, with a translucent rectangle per LED on top.
//
//	c := render.NewCompositor(nil)
//	img, err := c.Compose(ctx, manager.View())
//
// The compositor keeps both layers between calls and redraws a layer only
// when the version counters it depends on change. The composed image can
// be written with SavePNG or reduced to one colour per cell with
// CellColors for terminal display.
package render
