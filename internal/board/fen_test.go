package board

import "testing"

func TestParseFENStartPosition(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		t.Fatalf("ParseFEN(StartFEN): %v", err)
	}

	if pos.SideToMove != Red {
		t.Errorf("SideToMove = %v, want Red", pos.SideToMove)
	}
	if pos.KingSquare[Red] != NewSquare(4, 0) {
		t.Errorf("red king at %v, want e0", pos.KingSquare[Red])
	}
	if pos.KingSquare[Black] != NewSquare(4, 9) {
		t.Errorf("black king at %v, want e9", pos.KingSquare[Black])
	}
	if pos.PieceAt(NewSquare(7, 2)) != NewPiece(Cannon, Red) {
		t.Errorf("expected red cannon on h2, got %v", pos.PieceAt(NewSquare(7, 2)))
	}
	if pos.Hash == 0 {
		t.Error("hash not computed")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2C4/9/RNBAKABNR b - - 1 1",
		"4k4/9/9/9/9/9/9/9/9/3K5 w - - 0 1",
		"3k5/9/9/9/9/9/9/9/4R4/4K4 b - - 12 40",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", fen, err)
			continue
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip mismatch:\n in: %s\nout: %s", fen, got)
		}
	}
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"one field", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR"},
		{"nine ranks", "9/9/9/9/9/9/9/9/4K4 w - - 0 1"},
		{"bad side", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR x - - 0 1"},
		{"bad piece char", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNQ w - - 0 1"},
		{"rank too long", "rnbakabnrr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"},
		{"rank too short", "rnbakabn/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"},
		{"missing red king", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBA1ABNR w - - 0 1"},
		{"missing black king", "rnba1abnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1"},
		{"two red kings", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2K2C1/9/RNBAKABNR w - - 0 1"},
		{"king outside palace", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/K1P1P1P1P/1C5C1/9/RNBA1ABNR w - - 0 1"},
		{"negative halfmove clock", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - -1 1"},
		{"zero fullmove number", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseFEN(tc.fen); err == nil {
				t.Errorf("ParseFEN(%q) succeeded, want error", tc.fen)
			}
		})
	}
}
