package tonemap

import (
	"math/rand"
	"testing"
)

func TestQuantizeAverageSingleAnchor(t *testing.T) {
	a := AnchorSet{128}
	for _, c := range []struct{ v, want uint8 }{
		{0, 64}, {127, 64}, {128, 191}, {255, 191},
	} {
		if got := QuantizeAverage(c.v, a); got != c.want {
			t.Fatalf("QuantizeAverage(%d, [128]) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestQuantizeAverage(t *testing.T) {
	a := AnchorSet{64, 128, 192}
	for _, c := range []struct{ v, want uint8 }{
		{0, 64}, // below first anchor uses the second one
		{63, 64},
		{64, 96}, // inclusive lower bound
		{100, 96},
		{128, 96}, // shared bound goes to the lower interval
		{129, 160},
		{192, 160},
		{193, 191}, // above last anchor pairs the second to last with 255
		{255, 191},
	} {
		if got := QuantizeAverage(c.v, a); got != c.want {
			t.Fatalf("QuantizeAverage(%d) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestQuantizePartial(t *testing.T) {
	a := AnchorSet{64, 128, 192}
	for _, c := range []struct{ v, want uint8 }{
		{0, 0},
		{63, 0},
		{64, 76},
		{128, 76},
		{129, 127},
		{192, 127},
		{193, 255},
		{255, 255},
	} {
		if got := QuantizePartial(c.v, a); got != c.want {
			t.Fatalf("QuantizePartial(%d) = %d, want %d", c.v, got, c.want)
		}
	}

	single := AnchorSet{100}
	if got := QuantizePartial(99, single); got != 0 {
		t.Fatalf("below single anchor: got %d", got)
	}
	if got := QuantizePartial(100, single); got != 255 {
		t.Fatalf("at single anchor: got %d", got)
	}
}

func TestPartialLadder(t *testing.T) {
	for n := MinAnchors; n <= MaxAnchors; n++ {
		ladder := PartialLadder(n)
		if len(ladder) != n+2 {
			t.Fatalf("n=%d: ladder length %d", n, len(ladder))
		}
		if ladder[0] != 0 || ladder[n+1] != 255 {
			t.Fatalf("n=%d: ladder ends %v, %v", n, ladder[0], ladder[n+1])
		}
		size := 255.0 / float64(n+2)
		for k := 1; k <= n; k++ {
			want := (float64(k) + 0.5) * size
			if d := ladder[k] - want; d > 1e-9 || d < -1e-9 {
				t.Fatalf("n=%d k=%d: got %v want %v", n, k, ladder[k], want)
			}
		}
	}
}

func TestQuantizersTotalAndStable(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := MinAnchors; n <= MaxAnchors; n++ {
		sets := []AnchorSet{EvenAnchors(n)}
		for range 5 {
			a := make(AnchorSet, n)
			for i := range a {
				a[i] = rnd.Float64() * 255
			}
			sets = append(sets, a.Sorted())
		}
		for _, a := range sets {
			lutA := intensityTable(a, SegmentAverage)
			lutP := intensityTable(a, SegmentPartial)
			for v := 0; v < 256; v++ {
				avg := QuantizeAverage(uint8(v), a)
				if avg != QuantizeAverage(uint8(v), a) || avg != lutA[v] {
					t.Fatalf("average not stable for %v at %d", a, v)
				}
				part := QuantizePartial(uint8(v), a)
				if part != QuantizePartial(uint8(v), a) || part != lutP[v] {
					t.Fatalf("partial not stable for %v at %d", a, v)
				}
			}
		}
	}
}

func TestEvenAnchors(t *testing.T) {
	got := EvenAnchors(3)
	want := AnchorSet{51, 102, 153}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EvenAnchors(3) = %v, want %v", got, want)
		}
	}
	if EvenAnchors(0) != nil {
		t.Fatal("EvenAnchors(0) should be nil")
	}
}
