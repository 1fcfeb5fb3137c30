package core

import "testing"

func TestInterleaveRoundTrip(t *testing.T) {
	planar := [][]float64{{1, 2, 3}, {-1, -2, -3}}
	inter := make([]float32, 6)

	if n := Interleave(inter, planar, 3); n != 3 {
		t.Fatalf("Interleave() frames = %d, want 3", n)
	}

	want := []float32{1, -1, 2, -2, 3, -3}
	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("inter[%d] = %v, want %v", i, inter[i], want[i])
		}
	}

	back := NewBuffers(2, 3)
	if n := Deinterleave(back, inter); n != 3 {
		t.Fatalf("Deinterleave() frames = %d, want 3", n)
	}

	for ch := range planar {
		for i := range planar[ch] {
			if back[ch][i] != planar[ch][i] {
				t.Fatalf("back[%d][%d] = %v, want %v", ch, i, back[ch][i], planar[ch][i])
			}
		}
	}
}

func TestInterleaveShortDestination(t *testing.T) {
	planar := [][]float64{{1, 2, 3, 4}}
	dst := make([]float32, 2)

	if n := Interleave(dst, planar, 4); n != 2 {
		t.Fatalf("Interleave() frames = %d, want 2", n)
	}
}
