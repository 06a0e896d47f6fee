package board

import "testing"

// TestMoveRoundTrip checks the packed encoding over every from/to pair.
func TestMoveRoundTrip(t *testing.T) {
	for from := Square(0); from < SquareCount; from++ {
		for to := Square(0); to < SquareCount; to++ {
			m := NewMove(from, to)
			if m.From() != from || m.To() != to {
				t.Fatalf("NewMove(%v, %v) decoded as %v %v", from, to, m.From(), m.To())
			}
		}
	}
}

func TestMoveString(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"h2", "e2", "h2e2"},
		{"a0", "a9", "a0a9"},
		{"i9", "i8", "i9i8"},
	}

	for _, tc := range tests {
		from, err := ParseSquare(tc.from)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tc.from, err)
		}
		to, err := ParseSquare(tc.to)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tc.to, err)
		}
		if got := NewMove(from, to).String(); got != tc.want {
			t.Errorf("move %s-%s = %q, want %q", tc.from, tc.to, got, tc.want)
		}
	}

	if got := NoMove.String(); got != "0000" {
		t.Errorf("NoMove.String() = %q, want 0000", got)
	}
}

func TestParseMove(t *testing.T) {
	valid := []string{"h2e2", "a0a1", "i9i8", "e3e4"}
	for _, s := range valid {
		m, err := ParseMove(s)
		if err != nil {
			t.Errorf("ParseMove(%q) failed: %v", s, err)
			continue
		}
		if m.String() != s {
			t.Errorf("ParseMove(%q).String() = %q", s, m.String())
		}
	}

	invalid := []string{"", "h2e", "h2e2x", "j2e2", "h2z2", "hae2", "h2eX", "0000"}
	for _, s := range invalid {
		if _, err := ParseMove(s); err == nil {
			t.Errorf("ParseMove(%q) succeeded, want error", s)
		}
	}
}

func TestMoveList(t *testing.T) {
	var ml MoveList

	m1 := NewMove(NewSquare(7, 2), NewSquare(4, 2))
	m2 := NewMove(NewSquare(0, 0), NewSquare(0, 1))
	ml.Add(m1)
	ml.Add(m2)

	if ml.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ml.Len())
	}
	if !ml.Contains(m1) || !ml.Contains(m2) {
		t.Error("Contains failed for added moves")
	}
	if ml.Contains(NewMove(NewSquare(5, 5), NewSquare(5, 6))) {
		t.Error("Contains reported a move that was never added")
	}

	ml.Swap(0, 1)
	if ml.Get(0) != m2 || ml.Get(1) != m1 {
		t.Error("Swap did not exchange the entries")
	}

	ml.Clear()
	if ml.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", ml.Len())
	}
}
