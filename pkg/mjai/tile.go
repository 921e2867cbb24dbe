// Package mjai defines the mjai event format produced by the converter.
//
// Every event is one JSON object with a "type" field; a converted game is a
// newline-delimited stream of these objects in chronological order.
package mjai

import "fmt"

// Tile is an mjai tile name such as "1m", "5pr" or "E".
type Tile string

var honors = [...]Tile{"E", "S", "W", "N", "P", "F", "C"}

var suits = [...]string{"m", "p", "s"}

// TileFromTenhou converts a tenhou.net/6 tile id to its mjai name.
//
// Ids 11-19, 21-29 and 31-39 are the number suits, 41-47 the honors and
// 51-53 the red fives of each suit.
func TileFromTenhou(id int) (Tile, error) {
	switch {
	case id >= 11 && id <= 39 && id%10 != 0:
		suit := id/10 - 1
		return Tile(fmt.Sprintf("%d%s", id%10, suits[suit])), nil
	case id >= 41 && id <= 47:
		return honors[id-41], nil
	case id >= 51 && id <= 53:
		return Tile("5" + suits[id-51] + "r"), nil
	default:
		return "", fmt.Errorf("invalid tile id %d", id)
	}
}

// String returns the tile name.
func (t Tile) String() string {
	return string(t)
}
