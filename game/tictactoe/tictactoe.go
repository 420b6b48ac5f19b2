// Package tictactoe implements the classic 3x3 game as a game.State.
package tictactoe

import (
	"fmt"
	"strings"

	"seqhalving/game"
)

// Move is the index of a cell, 0..8 in row-major order.
type Move int

func (m Move) String() string {
	return fmt.Sprintf("%c%d", 'a'+rune(m%3), m/3+1)
}

// horizontal, vertical and diagonal patterns as bitboards
var winningPatterns = [8]uint16{
	0b111000000, 0b000111000, 0b000000111,
	0b100100100, 0b010010010, 0b001001001,
	0b100010001, 0b001010100,
}

const full = uint16(0b111111111)

type State struct {
	bitboards [3]uint16 // Indexed by player, slot 0 unused
	player    game.PlayerID
	winner    game.PlayerID
}

func New() *State {
	return &State{player: 1}
}

func (s *State) Player() game.PlayerID { return s.player }

func (s *State) NumPlayers() int { return 2 }

func (s *State) occupied() uint16 {
	return s.bitboards[1] | s.bitboards[2]
}

func (s *State) IsTerminal() bool {
	return s.winner != 0 || s.occupied() == full
}

func (s *State) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	occupied := s.occupied()
	moves := make([]game.Move, 0, 9)
	for i := 0; i < 9; i++ {
		if occupied&(1<<i) == 0 {
			moves = append(moves, Move(i))
		}
	}
	return moves
}

func (s *State) Play(move game.Move) game.State {
	m := move.(Move)
	next := *s
	next.bitboards[s.player] |= 1 << m
	for _, pattern := range winningPatterns {
		if next.bitboards[s.player]&pattern == pattern {
			next.winner = s.player
			break
		}
	}
	next.player = 3 - s.player
	return &next
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
	for row := 2; row >= 0; row-- {
		for col := 0; col < 3; col++ {
			bit := uint16(1) << (row*3 + col)
			switch {
			case s.bitboards[1]&bit != 0:
				b.WriteByte('X')
			case s.bitboards[2]&bit != 0:
				b.WriteByte('O')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Game is the tic-tac-toe ruleset.
type Game struct{}

func (Game) Name() string            { return "tictactoe" }
func (Game) NumPlayers() int         { return 2 }
func (Game) IsStochastic() bool      { return false }
func (Game) IsAlternatingMove() bool { return true }
func (Game) NewState() game.State    { return New() }
