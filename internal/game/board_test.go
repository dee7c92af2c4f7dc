package game

import "testing"

func TestApplyRejectsInvalidMoves(t *testing.T) {
	b := NewBoard()
	if b.Apply(-1, X) {
		t.Fatalf("expected out-of-range move -1 to be rejected")
	}
	if b.Apply(Cells, X) {
		t.Fatalf("expected out-of-range move %d to be rejected", Cells)
	}
	if b.Apply(4, Empty) {
		t.Fatalf("expected empty mark to be rejected")
	}
	if !b.Apply(4, X) {
		t.Fatalf("expected legal move to succeed")
	}
	if b.Apply(4, O) {
		t.Fatalf("expected occupied cell to be rejected")
	}
	if got := b.Cell(4); got != X {
		t.Fatalf("failed apply must not mutate: cell 4 = %v", got)
	}
}

func TestApplyUndoRestoresState(t *testing.T) {
	b := NewBoard()
	for _, setup := range []struct {
		move int
		mark Mark
	}{{0, X}, {3, O}, {1, X}, {4, O}} {
		if !b.Apply(setup.move, setup.mark) {
			t.Fatalf("setup move %d failed", setup.move)
		}
	}

	for move := 0; move < Cells; move++ {
		if b.Cell(move) != Empty {
			continue
		}
		before := *b
		if !b.Apply(move, X) {
			t.Fatalf("apply %d failed", move)
		}
		b.Undo(move)
		if *b != before {
			t.Fatalf("undo of move %d did not restore the board: got %+v want %+v", move, *b, before)
		}
	}
}

func TestUndoClearsCachedWinner(t *testing.T) {
	b := NewBoard()
	b.Apply(0, X)
	b.Apply(1, X)
	b.Apply(2, X)
	if b.Outcome() != WinX {
		t.Fatalf("expected WinX, got %v", b.Outcome())
	}
	b.Undo(2)
	if b.Outcome() != InProgress {
		t.Fatalf("expected InProgress after undo, got %v", b.Outcome())
	}
}

func TestOutcomeDetectsAllLines(t *testing.T) {
	for _, line := range winLines {
		b := NewBoard()
		for _, move := range line {
			b.Apply(move, O)
		}
		if b.Outcome() != WinO {
			t.Fatalf("line %v: expected WinO, got %v", line, b.Outcome())
		}
	}
}

func TestOutcomeDraw(t *testing.T) {
	// X O X / X O O / O X X has no winning line.
	b := NewBoard()
	marks := []Mark{X, O, X, X, O, O, O, X, X}
	for i, mark := range marks {
		if !b.Apply(i, mark) {
			t.Fatalf("apply %d failed", i)
		}
	}
	if b.Outcome() != Draw {
		t.Fatalf("expected Draw, got %v", b.Outcome())
	}
	if got := len(b.LegalMoves()); got != 0 {
		t.Fatalf("expected no legal moves, got %d", got)
	}
}

func TestLegalMovesIncreasingOrder(t *testing.T) {
	b := NewBoard()
	b.Apply(0, X)
	b.Apply(4, O)
	b.Apply(8, X)
	want := []int{1, 2, 3, 5, 6, 7}
	got := b.LegalMoves()
	if len(got) != len(want) {
		t.Fatalf("legal moves = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("legal moves = %v, want %v", got, want)
		}
	}
	if b.LegalMoveCount() != len(want) {
		t.Fatalf("LegalMoveCount = %d, want %d", b.LegalMoveCount(), len(want))
	}
}

func TestInputEncoding(t *testing.T) {
	b := NewBoard()
	b.Apply(0, X)
	b.Apply(1, O)

	fromX := b.Input(X)
	if fromX[0] != 1 || fromX[1] != -1 || fromX[2] != 0 {
		t.Fatalf("input for X = %v", fromX)
	}
	fromO := b.Input(O)
	if fromO[0] != -1 || fromO[1] != 1 || fromO[2] != 0 {
		t.Fatalf("input for O = %v", fromO)
	}
}

func TestUndoContractViolationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on undo of unapplied move")
		}
	}()
	NewBoard().Undo(0)
}
