// Package grid converts between linear cell indices and column/row
// coordinates. It backs the framebuffer renderers and the keypad overlay.
package grid

// GetGridCoords returns the column and row of a row-major index.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// GetIndex is the inverse of GetGridCoords.
func GetIndex(x, y, cols int) int {
	return y*cols + x
}

// CellOrigin returns the top-left pixel of cell (x, y) in a grid of
// cellW by cellH cells separated by gap pixels, offset by (left, top).
func CellOrigin(x, y, cellW, cellH, gap, left, top int) (px, py int) {
	return left + x*(cellW+gap), top + y*(cellH+gap)
}
