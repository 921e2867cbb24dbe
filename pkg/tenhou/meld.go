package tenhou

import (
	"fmt"
	"slices"
	"strconv"
)

// MeldKind is the marker letter of a meld string.
type MeldKind byte

const (
	MeldChi       MeldKind = 'c'
	MeldPon       MeldKind = 'p'
	MeldDaiminkan MeldKind = 'm'
	MeldKakan     MeldKind = 'k'
	MeldAnkan     MeldKind = 'a'
	MeldReach     MeldKind = 'r'
)

// Meld is a decoded meld string. Tiles lists every tile id in order with the
// marker removed; Called is the tile written right after the marker.
type Meld struct {
	Kind   MeldKind
	Pos    int
	Tiles  []int
	Called int
}

// ParseMeld decodes a meld string. The marker position encodes the seat the
// tile came from, so it is validated per kind.
func ParseMeld(s string) (Meld, error) {
	pos := -1
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			if pos >= 0 {
				return Meld{}, fmt.Errorf("meld %q: more than one marker", s)
			}
			pos = i
		}
	}
	if pos < 0 {
		return Meld{}, fmt.Errorf("meld %q: no marker", s)
	}

	m := Meld{Kind: MeldKind(s[pos]), Pos: pos}
	before, after := s[:pos], s[pos+1:]
	if len(before)%2 != 0 || len(after)%2 != 0 || len(after) == 0 {
		return Meld{}, fmt.Errorf("meld %q: malformed tile list", s)
	}

	digits := before + after
	for i := 0; i < len(digits); i += 2 {
		id, err := strconv.Atoi(digits[i : i+2])
		if err != nil {
			return Meld{}, fmt.Errorf("meld %q: %w", s, err)
		}
		m.Tiles = append(m.Tiles, id)
	}
	m.Called = m.Tiles[pos/2]

	want, positions := meldShape(m.Kind)
	if want == 0 {
		return Meld{}, fmt.Errorf("meld %q: unknown marker %q", s, string(rune(m.Kind)))
	}
	if len(m.Tiles) != want {
		return Meld{}, fmt.Errorf("meld %q: has %d tiles, want %d", s, len(m.Tiles), want)
	}
	if positions != nil && !slices.Contains(positions, pos) {
		return Meld{}, fmt.Errorf("meld %q: marker at invalid position %d", s, pos)
	}

	return m, nil
}

// meldShape returns the tile count and allowed marker positions of a kind.
// A nil position list allows any position.
func meldShape(kind MeldKind) (int, []int) {
	switch kind {
	case MeldChi:
		return 3, []int{0}
	case MeldPon:
		return 3, []int{0, 2, 4}
	case MeldDaiminkan:
		return 4, []int{0, 2, 6}
	case MeldKakan:
		return 4, []int{0, 2, 4}
	case MeldAnkan:
		return 4, nil
	case MeldReach:
		return 1, []int{0}
	default:
		return 0, nil
	}
}

// Target returns the seat the called tile came from, relative to actor.
// Only chi, pon and daiminkan have a target.
func (m Meld) Target(actor int) int {
	offset := 0
	switch m.Kind {
	case MeldChi:
		offset = 3
	case MeldPon:
		offset = 3 - m.Pos/2
	case MeldDaiminkan:
		if m.Pos == 6 {
			offset = 1
		} else {
			offset = 3 - m.Pos/2
		}
	default:
		return actor
	}
	return (actor + offset) % 4
}

// Consumed returns the tiles other than the called one.
func (m Meld) Consumed() []int {
	out := make([]int, 0, len(m.Tiles)-1)
	for i, t := range m.Tiles {
		if i != m.Pos/2 {
			out = append(out, t)
		}
	}
	return out
}
