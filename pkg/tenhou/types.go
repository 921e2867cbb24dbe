// Package tenhou parses tenhou.net/6 game records and replays them into mjai
// events.
package tenhou

import (
	"encoding/json"
	"fmt"
)

// Tile ids used by tenhou.net/6 actions besides real tiles.
const (
	// Tsumogiri marks a discard of the tile just drawn.
	Tsumogiri = 60
	// KanPlaceholder fills the discard slot consumed by an open kan.
	KanPlaceholder = 0
)

// ResultHora is the result name of a hand that ended with one or more wins.
const ResultHora = "和了"

// kyokuFields is the fixed width of one entry of the "log" array.
const kyokuFields = 17

// RawLog is the top-level tenhou.net/6 document.
type RawLog struct {
	Title []string   `json:"title,omitempty"`
	Ref   string     `json:"ref,omitempty"`
	Names []string   `json:"name" validate:"omitempty,len=4"`
	Rule  RawRule    `json:"rule"`
	Log   []RawKyoku `json:"log" validate:"required,min=1,dive"`
}

// RawRule carries the lobby rule description.
type RawRule struct {
	Disp  string `json:"disp"`
	Aka   int    `json:"aka"`
	Aka51 int    `json:"aka51"`
	Aka52 int    `json:"aka52"`
	Aka53 int    `json:"aka53"`
}

// RawKyoku is one hand, stored by tenhou as a 17-element array:
//
//	[ [kyoku, honba, kyotaku], scores, dora, ura,
//	  haipai0, takes0, discards0, ..., haipai3, takes3, discards3,
//	  result ]
type RawKyoku struct {
	Meta     []int             `validate:"len=3"`
	Scores   []int             `validate:"len=4"`
	Dora     []int             `validate:"min=1,dive,tile"`
	Ura      []int             `validate:"dive,tile"`
	Haipai   [4][]int          `validate:"dive,len=13,dive,tile"`
	Takes    [4][]Action       `validate:"-"`
	Discards [4][]Action       `validate:"-"`
	Result   []json.RawMessage `validate:"min=1"`
}

// UnmarshalJSON decodes the positional array form.
func (k *RawKyoku) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != kyokuFields {
		return fmt.Errorf("kyoku has %d fields, want %d", len(parts), kyokuFields)
	}

	fields := []any{&k.Meta, &k.Scores, &k.Dora, &k.Ura}
	for seat := 0; seat < 4; seat++ {
		fields = append(fields, &k.Haipai[seat], &k.Takes[seat], &k.Discards[seat])
	}
	fields = append(fields, &k.Result)

	for i, f := range fields {
		if err := json.Unmarshal(parts[i], f); err != nil {
			return fmt.Errorf("kyoku field %d: %w", i, err)
		}
	}
	return nil
}

// Action is one entry of a takes or discards array: either a tile id or a
// meld string such as "p222222" or "r60".
type Action struct {
	Tile int
	Meld string
}

// IsMeld reports whether the action is a meld string.
func (a Action) IsMeld() bool {
	return a.Meld != ""
}

// UnmarshalJSON accepts a number or a string.
func (a *Action) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Meld)
	}
	return json.Unmarshal(data, &a.Tile)
}

// MarshalJSON writes the action back in its tenhou form.
func (a Action) MarshalJSON() ([]byte, error) {
	if a.IsMeld() {
		return json.Marshal(a.Meld)
	}
	return json.Marshal(a.Tile)
}

func (a Action) String() string {
	if a.IsMeld() {
		return a.Meld
	}
	return fmt.Sprintf("%d", a.Tile)
}

// GameLength is the scheduled length of a game.
type GameLength int

const (
	GameLengthUnknown GameLength = iota
	GameLengthTonpuu
	GameLengthHanchan
	// GameLengthSanma marks a three-player game; mjai only models four seats.
	GameLengthSanma
)

func (g GameLength) String() string {
	switch g {
	case GameLengthTonpuu:
		return "tonpuu"
	case GameLengthHanchan:
		return "hanchan"
	case GameLengthSanma:
		return "sanma"
	default:
		return "unknown"
	}
}

// Log is a validated game record.
type Log struct {
	Version    string
	Names      [4]string
	Rule       string
	GameLength GameLength
	Aka        bool
	Kyokus     []Kyoku
}

// Kyoku is a validated hand.
type Kyoku struct {
	Num      int
	Honba    int
	Kyotaku  int
	Scores   [4]int
	Dora     []int
	Ura      []int
	Haipai   [4][]int
	Takes    [4][]Action
	Discards [4][]Action
	Result   Result
}

// Result is how a hand ended.
type Result struct {
	Name   string
	Horas  []Hora
	Deltas []int
}

// IsHora reports whether the hand ended with a win.
func (r Result) IsHora() bool {
	return r.Name == ResultHora
}

// Hora is one winner of a hand.
type Hora struct {
	Who     int
	FromWho int
	PaoWho  int
	Deltas  []int
}
