package merkleproof

import "testing"

func TestTreeWidthAndHeight(t *testing.T) {
	cases := []struct {
		n      uint32
		height uint32
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
	}
	for _, tt := range cases {
		h := treeHeight(tt.n)
		if h != tt.height {
			t.Errorf("treeHeight(%d) = %d, want %d", tt.n, h, tt.height)
		}
		if treeWidth(h, tt.n) != 1 {
			t.Errorf("treeWidth(%d, %d) should reduce to 1 at computed height", h, tt.n)
		}
	}
}

func TestUnpackFlags(t *testing.T) {
	// 0b00000101 -> bits [1,0,1,0,0,0,0,0] LSB first
	flags := unpackFlags([]byte{0b0000_0101})
	want := []bool{true, false, true, false, false, false, false, false}
	for i, w := range want {
		if flags[i] != w {
			t.Fatalf("bit %d: want %v, have %v", i, w, flags[i])
		}
	}
}
