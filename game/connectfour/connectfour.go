// Package connectfour implements Connect Four on the standard 7x6 board.
package connectfour

import (
	"strings"

	"seqhalving/game"
)

const (
	Columns = 7
	Rows    = 6
)

// Move is the column a disc is dropped into.
type Move int

type State struct {
	grid    [Rows][Columns]game.PlayerID
	heights [Columns]int
	player  game.PlayerID
	winner  game.PlayerID
	plies   int
}

func New() *State {
	return &State{player: 1}
}

func (s *State) Player() game.PlayerID { return s.player }

func (s *State) NumPlayers() int { return 2 }

func (s *State) IsTerminal() bool {
	return s.winner != 0 || s.plies == Rows*Columns
}

func (s *State) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]game.Move, 0, Columns)
	for col := 0; col < Columns; col++ {
		if s.heights[col] < Rows {
			moves = append(moves, Move(col))
		}
	}
	return moves
}

func (s *State) Play(move game.Move) game.State {
	col := int(move.(Move))
	next := *s
	row := next.heights[col]
	next.grid[row][col] = s.player
	next.heights[col]++
	next.plies++
	if next.connects(row, col) {
		next.winner = s.player
	}
	next.player = 3 - s.player
	return &next
}

var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// connects reports whether the disc at (row, col) completes a line of four.
func (s *State) connects(row, col int) bool {
	player := s.grid[row][col]
	for _, d := range directions {
		count := 1
		for _, sign := range [2]int{1, -1} {
			r, c := row+sign*d[0], col+sign*d[1]
			for r >= 0 && r < Rows && c >= 0 && c < Columns && s.grid[r][c] == player {
				count++
				r, c = r+sign*d[0], c+sign*d[1]
			}
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

func (s *State) Utilities() []float64 {
	utilities := make([]float64, 3)
	if s.winner != 0 {
		utilities[s.winner] = 1
		utilities[3-s.winner] = -1
	}
	return utilities
}

func (s *State) String() string {
	var b strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			switch s.grid[row][col] {
			case 1:
				b.WriteByte('X')
			case 2:
				b.WriteByte('O')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Game is the Connect Four ruleset.
type Game struct{}

func (Game) Name() string            { return "connectfour" }
func (Game) NumPlayers() int         { return 2 }
func (Game) IsStochastic() bool      { return false }
func (Game) IsAlternatingMove() bool { return true }
func (Game) NewState() game.State    { return New() }
