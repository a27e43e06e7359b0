package entropy

import "testing"

func TestSameSeedSameStream(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d diverged: %d vs %d", i, x, y)
		}
	}
}

func TestZeroSeedIsReplaced(t *testing.T) {
	s := New(0)
	if s.Seed() == 0 {
		t.Fatal("expected zero seed to be replaced")
	}
}

func TestBetweenBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 500; i++ {
		v := s.Between(5, 2)
		if v < 2 || v > 5 {
			t.Fatalf("Between out of range: %d", v)
		}
	}
}

func TestWeightedSkipsNonPositive(t *testing.T) {
	s := New(3)
	for i := 0; i < 200; i++ {
		idx := s.Weighted([]int{0, -4, 5, 0})
		if idx != 2 {
			t.Fatalf("expected only index 2, got %d", idx)
		}
	}
	if idx := s.Weighted([]int{0, 0}); idx != -1 {
		t.Errorf("expected -1 for all-zero weights, got %d", idx)
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(11)
	for i := 0; i < 100; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestDeriveIsIndependent(t *testing.T) {
	base := New(100)
	d1 := base.Derive(5)
	base.Intn(10)
	d2 := New(100).Derive(5)
	if d1.Intn(1<<30) != d2.Intn(1<<30) {
		t.Error("derived sources with equal offsets should match regardless of parent draws")
	}
}
