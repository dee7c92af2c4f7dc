package game

import "fmt"

// Mark identifies the owner of a cell.
type Mark int8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

// Other returns the opposing mark. Empty has no opponent and maps to itself.
func (m Mark) Other() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Cells is the number of board cells; moves are cell indices in [0, Cells).
const Cells = 9

// Outcome is the game-terminal classification of a position.
type Outcome int8

const (
	InProgress Outcome = iota
	WinX
	WinO
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WinX:
		return "win_x"
	case WinO:
		return "win_o"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// winLines enumerates the 3 rows, 3 columns and 2 diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a 3x3 tic-tac-toe grid with a cached winner. It is mutated in
// place during search and play; Apply/Undo must be paired in strict stack
// order or the cached winner becomes stale.
type Board struct {
	cells  [Cells]Mark
	winner Mark
}

func NewBoard() *Board {
	return &Board{}
}

// Reset clears the board for a fresh game.
func (b *Board) Reset() {
	*b = Board{}
}

// Cell returns the mark at cell index i.
func (b *Board) Cell(i int) Mark {
	return b.cells[i]
}

// LegalMoves returns the empty cell indices in increasing order. An empty
// result means the board is full.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, Cells)
	for i, cell := range b.cells {
		if cell == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// LegalMoveCount counts empty cells without allocating.
func (b *Board) LegalMoveCount() int {
	n := 0
	for _, cell := range b.cells {
		if cell == Empty {
			n++
		}
	}
	return n
}

// Apply writes mark into the cell and caches a win if the move completes a
// line. It reports false, without mutating, when the move is out of range,
// the cell is occupied, or the mark is Empty.
func (b *Board) Apply(move int, mark Mark) bool {
	if move < 0 || move >= Cells || mark == Empty || b.cells[move] != Empty {
		return false
	}
	b.cells[move] = mark
	if b.lineWon(mark) {
		b.winner = mark
	}
	return true
}

// Undo reverts a previously applied move and clears the cached winner.
// Callers must undo moves in reverse order of application; undoing a move
// that was never applied is a contract violation.
func (b *Board) Undo(move int) {
	if move < 0 || move >= Cells {
		panic(fmt.Sprintf("game: undo of out-of-range move %d", move))
	}
	if b.cells[move] == Empty {
		panic(fmt.Sprintf("game: undo of unapplied move %d", move))
	}
	b.cells[move] = Empty
	b.winner = Empty
}

// Outcome classifies the position: a cached win, a draw when the board is
// full without a winner, or InProgress otherwise.
func (b *Board) Outcome() Outcome {
	switch b.winner {
	case X:
		return WinX
	case O:
		return WinO
	}
	if b.LegalMoveCount() == 0 {
		return Draw
	}
	return InProgress
}

// Input encodes the board for the network: own mark = +1, opponent = -1,
// empty = 0. The zero entries double as the legal-move mask.
func (b *Board) Input(own Mark) [Cells]float64 {
	var out [Cells]float64
	for i, cell := range b.cells {
		switch cell {
		case own:
			out[i] = 1
		case Empty:
			out[i] = 0
		default:
			out[i] = -1
		}
	}
	return out
}

func (b *Board) lineWon(mark Mark) bool {
	for _, line := range winLines {
		if b.cells[line[0]] == mark && b.cells[line[1]] == mark && b.cells[line[2]] == mark {
			return true
		}
	}
	return false
}
