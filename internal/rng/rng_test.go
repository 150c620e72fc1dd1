package rng

import "testing"

func TestDeterministic(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 50; i++ {
		fa, fb := a.Float(), b.Float()
		if fa != fb {
			t.Fatalf("diverged at step %d: %v != %v", i, fa, fb)
		}
	}
}

func TestFloatRange(t *testing.T) {
	r := New(1)
	for i := 0; i < 1000; i++ {
		f := r.Float()
		if f < 0 || f >= 1 {
			t.Fatalf("Float out of range: %v", f)
		}
	}
}

func TestSaveRestore(t *testing.T) {
	r := New(999)
	r.Save()
	want := r.Float()
	wantSeed := r.Seed()
	// burn some extra draws
	r.Float()
	r.Float()
	r.Restore()
	r.Save() // re-snapshot so comparison below is meaningful
	got := r.Float()
	if got != want || r.Seed() != wantSeed {
		t.Fatalf("restore did not rewind state")
	}
}

func TestRestoreReplaysSameSequence(t *testing.T) {
	r := New(42)
	r.Save()
	first := r.Float()
	second := r.Float()
	r.Restore()
	replayFirst := r.Float()
	replaySecond := r.Float()
	if first != replayFirst || second != replaySecond {
		t.Fatalf("restore did not replay identical sequence")
	}
}

func TestBellRanges(t *testing.T) {
	r := New(31)
	for i := 0; i < 500; i++ {
		if v := r.N3(); v < 0 || v >= 1 {
			t.Fatalf("N3 out of [0,1): %v", v)
		}
		if v := r.N4(); v < 0 || v >= 2 {
			t.Fatalf("N4 out of [0,2): %v", v)
		}
	}
}

func TestIntBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 500; i++ {
		v := r.Int(3, 10)
		if v < 3 || v >= 10 {
			t.Fatalf("Int out of [3,10): %d", v)
		}
	}
}

func TestBoolDistributionExtremes(t *testing.T) {
	r := New(5)
	for i := 0; i < 100; i++ {
		if r.Bool(0) {
			t.Fatalf("Bool(0) returned true")
		}
	}
	r2 := New(5)
	for i := 0; i < 100; i++ {
		if !r2.Bool(1) {
			t.Fatalf("Bool(1) returned false")
		}
	}
}
