// Package grid models the LED grid of a climbing wall: colours, the
// per-LED state document exchanged with a wall controller, and the
// mapping between LED indices and canvas pixels.
//
// LEDs are numbered row-major from the top-left corner:
//
//	index = row*columns + col
//
// A Mapper lays the grid out on a square canvas whose side is the window
// width. Cell width is width/columns and cell height is width/rows.
package grid
