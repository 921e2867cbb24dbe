package mjai

// Type is the value of an event's "type" field.
type Type string

const (
	TypeStartGame     Type = "start_game"
	TypeStartKyoku    Type = "start_kyoku"
	TypeTsumo         Type = "tsumo"
	TypeDahai         Type = "dahai"
	TypeChi           Type = "chi"
	TypePon           Type = "pon"
	TypeDaiminkan     Type = "daiminkan"
	TypeKakan         Type = "kakan"
	TypeAnkan         Type = "ankan"
	TypeDora          Type = "dora"
	TypeReach         Type = "reach"
	TypeReachAccepted Type = "reach_accepted"
	TypeHora          Type = "hora"
	TypeRyukyoku      Type = "ryukyoku"
	TypeEndKyoku      Type = "end_kyoku"
	TypeEndGame       Type = "end_game"
)

// Event is a single mjai event. Implementations marshal to one JSON object
// whose first field is "type".
type Event interface {
	EventType() Type
}

// StartGame opens the event stream.
type StartGame struct {
	Type       Type      `json:"type"`
	Names      [4]string `json:"names"`
	KyokuFirst int       `json:"kyoku_first"`
	AkaFlag    bool      `json:"aka_flag"`
}

// StartKyoku opens a hand.
type StartKyoku struct {
	Type       Type      `json:"type"`
	Bakaze     Tile      `json:"bakaze"`
	DoraMarker Tile      `json:"dora_marker"`
	Kyoku      int       `json:"kyoku"`
	Honba      int       `json:"honba"`
	Kyotaku    int       `json:"kyotaku"`
	Oya        int       `json:"oya"`
	Scores     [4]int    `json:"scores"`
	Tehais     [4][]Tile `json:"tehais"`
}

type Tsumo struct {
	Type  Type `json:"type"`
	Actor int  `json:"actor"`
	Pai   Tile `json:"pai"`
}

type Dahai struct {
	Type      Type `json:"type"`
	Actor     int  `json:"actor"`
	Pai       Tile `json:"pai"`
	Tsumogiri bool `json:"tsumogiri"`
}

// Call is shared by chi, pon and daiminkan, which differ only in type.
type Call struct {
	Type     Type   `json:"type"`
	Actor    int    `json:"actor"`
	Target   int    `json:"target"`
	Pai      Tile   `json:"pai"`
	Consumed []Tile `json:"consumed"`
}

type Kakan struct {
	Type     Type   `json:"type"`
	Actor    int    `json:"actor"`
	Pai      Tile   `json:"pai"`
	Consumed []Tile `json:"consumed"`
}

type Ankan struct {
	Type     Type   `json:"type"`
	Actor    int    `json:"actor"`
	Consumed []Tile `json:"consumed"`
}

type Dora struct {
	Type       Type `json:"type"`
	DoraMarker Tile `json:"dora_marker"`
}

type Reach struct {
	Type  Type `json:"type"`
	Actor int  `json:"actor"`
}

type ReachAccepted struct {
	Type  Type `json:"type"`
	Actor int  `json:"actor"`
}

// Hora is a win. Target equals Actor for a self-drawn win.
type Hora struct {
	Type       Type   `json:"type"`
	Actor      int    `json:"actor"`
	Target     int    `json:"target"`
	Deltas     []int  `json:"deltas,omitempty"`
	UraMarkers []Tile `json:"ura_markers,omitempty"`
}

type Ryukyoku struct {
	Type   Type  `json:"type"`
	Deltas []int `json:"deltas,omitempty"`
}

type EndKyoku struct {
	Type Type `json:"type"`
}

type EndGame struct {
	Type Type `json:"type"`
}

func (e *StartGame) EventType() Type     { return e.Type }
func (e *StartKyoku) EventType() Type    { return e.Type }
func (e *Tsumo) EventType() Type         { return e.Type }
func (e *Dahai) EventType() Type         { return e.Type }
func (e *Call) EventType() Type          { return e.Type }
func (e *Kakan) EventType() Type         { return e.Type }
func (e *Ankan) EventType() Type         { return e.Type }
func (e *Dora) EventType() Type          { return e.Type }
func (e *Reach) EventType() Type         { return e.Type }
func (e *ReachAccepted) EventType() Type { return e.Type }
func (e *Hora) EventType() Type          { return e.Type }
func (e *Ryukyoku) EventType() Type      { return e.Type }
func (e *EndKyoku) EventType() Type      { return e.Type }
func (e *EndGame) EventType() Type       { return e.Type }

// NewTsumo returns a draw event.
func NewTsumo(actor int, pai Tile) *Tsumo {
	return &Tsumo{Type: TypeTsumo, Actor: actor, Pai: pai}
}

// NewDahai returns a discard event.
func NewDahai(actor int, pai Tile, tsumogiri bool) *Dahai {
	return &Dahai{Type: TypeDahai, Actor: actor, Pai: pai, Tsumogiri: tsumogiri}
}

// NewCall returns a chi, pon or daiminkan event.
func NewCall(typ Type, actor, target int, pai Tile, consumed []Tile) *Call {
	return &Call{Type: typ, Actor: actor, Target: target, Pai: pai, Consumed: consumed}
}

func NewDora(marker Tile) *Dora {
	return &Dora{Type: TypeDora, DoraMarker: marker}
}

func NewReach(actor int) *Reach {
	return &Reach{Type: TypeReach, Actor: actor}
}

func NewReachAccepted(actor int) *ReachAccepted {
	return &ReachAccepted{Type: TypeReachAccepted, Actor: actor}
}
