package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 64 cols (framebuffer)
		{0, 64, 0, 0},
		{1, 64, 1, 0},
		{63, 64, 63, 0},
		{64, 64, 0, 1},
		{65, 64, 1, 1},
		{2047, 64, 63, 31},

		// 4 cols (keypad)
		{0, 4, 0, 0},
		{3, 4, 3, 0},
		{4, 4, 0, 1},
		{15, 4, 3, 3},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
		if got := GetIndex(gotX, gotY, tc.cols); got != tc.index {
			t.Errorf("GetIndex(%d, %d, %d) = %d; want %d", gotX, gotY, tc.cols, got, tc.index)
		}
	}
}

func TestCellOrigin(t *testing.T) {
	px, py := CellOrigin(2, 1, 20, 10, 4, 100, 8)
	if px != 148 || py != 22 {
		t.Errorf("CellOrigin() = (%d, %d); want (148, 22)", px, py)
	}
}
