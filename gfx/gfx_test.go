package gfx

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct{ n, size, want int }{
		{0, 64, 0},
		{63, 64, 63},
		{64, 64, 0},
		{-1, 64, 63},
		{-65, 64, 63},
		{130, 100, 30},
	}
	for _, tc := range tests {
		if got := Wrap(tc.n, tc.size); got != tc.want {
			t.Errorf("Wrap(%d, %d) = %d, want %d", tc.n, tc.size, got, tc.want)
		}
	}
}

func TestBlitSkipsTransparent(t *testing.T) {
	dst := NewPicture("DST", 4, 4, 255)
	src := NewPicture("SRC", 2, 2, 255)
	src.Columns[0][0] = 7
	src.Columns[1][1] = 8
	dst.Columns[2][1] = 3

	dst.Blit(src, 1, 0)
	dst.Blit(src, 3, 3) // partly off the picture

	if dst.Columns[1][0] != 7 {
		t.Errorf("pixel (1,0) = %d, want 7", dst.Columns[1][0])
	}
	if dst.Columns[2][1] != 8 {
		t.Errorf("pixel (2,1) = %d, want 8", dst.Columns[2][1])
	}
	if dst.Columns[2][0] != 255 {
		t.Errorf("transparent source pixel overwrote (2,0): %d", dst.Columns[2][0])
	}
	if dst.Columns[3][3] != 7 {
		t.Errorf("clipped blit pixel (3,3) = %d, want 7", dst.Columns[3][3])
	}
}

func TestTextureColumnWraps(t *testing.T) {
	pic := NewPicture("T", 3, 1, 0)
	for x := range pic.Columns {
		pic.Columns[x][0] = byte(x + 1)
	}
	tex := &Texture{Name: "T", Width: 3, Height: 1, Picture: pic}
	for _, tc := range []struct{ x, want int }{{0, 1}, {2, 3}, {3, 1}, {-1, 3}, {-4, 3}} {
		if got := tex.Column(tc.x)[0]; int(got) != tc.want {
			t.Errorf("Column(%d) = %d, want %d", tc.x, got, tc.want)
		}
	}
}

func TestFlatAt(t *testing.T) {
	f := &Flat{Name: "F", Data: make([]byte, FlatWidth*FlatHeight)}
	f.Data[2*FlatWidth+1] = 9
	if got := f.At(1, 2); got != 9 {
		t.Errorf("At(1,2) = %d", got)
	}
	if got := f.At(1+64, 2-64); got != 9 {
		t.Errorf("At wraps: got %d", got)
	}
}

func TestPack(t *testing.T) {
	if got := (RGB{0x12, 0x34, 0x56}).Pack(); got != 0xFF123456 {
		t.Errorf("Pack = %#x", got)
	}
}
