package tenhou

import (
	"errors"
	"fmt"

	"github.com/mjlog/mjconv/pkg/mjai"
)

var (
	// ErrUnsupportedGame is returned for game lengths or variants mjai cannot represent.
	ErrUnsupportedGame = errors.New("unsupported game")
	// ErrInconsistent is returned when a record references state that does not exist.
	ErrInconsistent = errors.New("inconsistent record")
)

var bakazes = [...]mjai.Tile{"E", "S", "W", "N"}

// ToMjai replays a log into an mjai event sequence.
func ToMjai(log *Log) ([]mjai.Event, error) {
	var kyokuFirst int
	switch log.GameLength {
	case GameLengthTonpuu:
		kyokuFirst = 0
	case GameLengthHanchan:
		kyokuFirst = 4
	default:
		return nil, fmt.Errorf("%w: game length %s (rule %q)", ErrUnsupportedGame, log.GameLength, log.Rule)
	}

	events := []mjai.Event{&mjai.StartGame{
		Type:       mjai.TypeStartGame,
		Names:      log.Names,
		KyokuFirst: kyokuFirst,
		AkaFlag:    log.Aka,
	}}

	for i := range log.Kyokus {
		r := &replay{kyoku: &log.Kyokus[i]}
		if err := r.run(); err != nil {
			return nil, fmt.Errorf("kyoku %d: %w", i, err)
		}
		events = append(events, r.events...)
	}

	events = append(events, &mjai.EndGame{Type: mjai.TypeEndGame})
	return events, nil
}

// replay walks one kyoku, interleaving the per-seat takes and discards in
// turn order.
type replay struct {
	kyoku    *Kyoku
	events   []mjai.Event
	takes    [4]int
	discards [4]int
	// lastDraw is the tile id each seat drew last, or 0 after a call.
	lastDraw    [4]int
	nextDora    int
	pendingDora bool
}

func (r *replay) run() error {
	k := r.kyoku
	if k.Num < 0 || k.Num >= 4*len(bakazes) {
		return fmt.Errorf("%w: kyoku number %d out of range", ErrInconsistent, k.Num)
	}

	start, err := r.startKyoku()
	if err != nil {
		return err
	}
	r.emit(start)
	r.nextDora = 1

	actor := k.Num % 4
	called := false
	for {
		take, ok := r.peekTake(actor)
		if !ok {
			break
		}
		r.takes[actor]++

		if take.IsMeld() {
			if !called {
				return fmt.Errorf("%w: seat %d calls %q out of turn", ErrInconsistent, actor, take.Meld)
			}
			rinshan, err := r.call(actor, take.Meld)
			if err != nil {
				return err
			}
			if rinshan {
				called = false
				continue
			}
		} else {
			pai, err := tile(take.Tile)
			if err != nil {
				return err
			}
			r.lastDraw[actor] = take.Tile
			r.emit(mjai.NewTsumo(actor, pai))
		}
		called = false

		discard, ok := r.peekDiscard(actor)
		if !ok {
			break
		}
		r.discards[actor]++

		next, isCall, done, err := r.discard(actor, discard)
		if err != nil {
			return err
		}
		if done {
			// A kan was declared; the same seat draws from the dead wall.
			continue
		}
		actor, called = next, isCall
	}

	if err := r.checkConsumed(); err != nil {
		return err
	}
	return r.end()
}

func (r *replay) startKyoku() (*mjai.StartKyoku, error) {
	k := r.kyoku
	marker, err := tile(k.Dora[0])
	if err != nil {
		return nil, err
	}

	ev := &mjai.StartKyoku{
		Type:       mjai.TypeStartKyoku,
		Bakaze:     bakazes[k.Num/4],
		DoraMarker: marker,
		Kyoku:      k.Num%4 + 1,
		Honba:      k.Honba,
		Kyotaku:    k.Kyotaku,
		Oya:        k.Num % 4,
		Scores:     k.Scores,
	}
	for seat, hand := range k.Haipai {
		tiles, err := tiles(hand)
		if err != nil {
			return nil, fmt.Errorf("haipai %d: %w", seat, err)
		}
		ev.Tehais[seat] = tiles
	}
	return ev, nil
}

// call emits a chi, pon or daiminkan taken by actor. It reports whether the
// call was a daiminkan, after which actor draws a replacement tile instead of
// discarding.
func (r *replay) call(actor int, s string) (bool, error) {
	m, err := ParseMeld(s)
	if err != nil {
		return false, fmt.Errorf("%w: seat %d: %w", ErrInconsistent, actor, err)
	}

	var typ mjai.Type
	switch m.Kind {
	case MeldChi:
		typ = mjai.TypeChi
	case MeldPon:
		typ = mjai.TypePon
	case MeldDaiminkan:
		typ = mjai.TypeDaiminkan
	default:
		return false, fmt.Errorf("%w: seat %d: %q is not a call", ErrInconsistent, actor, s)
	}

	pai, err := tile(m.Called)
	if err != nil {
		return false, err
	}
	consumed, err := tiles(m.Consumed())
	if err != nil {
		return false, err
	}

	r.lastDraw[actor] = 0
	r.emit(mjai.NewCall(typ, actor, m.Target(actor), pai, consumed))

	if m.Kind != MeldDaiminkan {
		return false, nil
	}

	placeholder, ok := r.peekDiscard(actor)
	if !ok || placeholder.IsMeld() || placeholder.Tile != KanPlaceholder {
		return false, fmt.Errorf("%w: seat %d: daiminkan not followed by a placeholder discard", ErrInconsistent, actor)
	}
	r.discards[actor]++
	r.pendingDora = true
	return true, nil
}

// discard handles one discard-side action of actor. For a kan it reports
// done so the caller lets actor draw again; otherwise it returns the seat
// acting next and whether that seat calls the discarded tile.
func (r *replay) discard(actor int, a Action) (next int, isCall, done bool, err error) {
	id := a.Tile
	reach := false

	if a.IsMeld() {
		m, err := ParseMeld(a.Meld)
		if err != nil {
			return 0, false, false, fmt.Errorf("%w: seat %d: %w", ErrInconsistent, actor, err)
		}

		switch m.Kind {
		case MeldAnkan:
			consumed, err := tiles(m.Tiles)
			if err != nil {
				return 0, false, false, err
			}
			r.flushDora()
			r.emit(&mjai.Ankan{Type: mjai.TypeAnkan, Actor: actor, Consumed: consumed})
			r.revealDora()
			return 0, false, true, nil
		case MeldKakan:
			pai, err := tile(m.Called)
			if err != nil {
				return 0, false, false, err
			}
			consumed, err := tiles(m.Consumed())
			if err != nil {
				return 0, false, false, err
			}
			r.flushDora()
			r.emit(&mjai.Kakan{Type: mjai.TypeKakan, Actor: actor, Pai: pai, Consumed: consumed})
			r.pendingDora = true
			return 0, false, true, nil
		case MeldReach:
			reach = true
			id = m.Called
		default:
			return 0, false, false, fmt.Errorf("%w: seat %d: %q is not a discard", ErrInconsistent, actor, a.Meld)
		}
	}

	tsumogiri := id == Tsumogiri
	if tsumogiri {
		if r.lastDraw[actor] == 0 {
			return 0, false, false, fmt.Errorf("%w: seat %d: tsumogiri without a preceding draw", ErrInconsistent, actor)
		}
		id = r.lastDraw[actor]
	}
	pai, err := tile(id)
	if err != nil {
		return 0, false, false, err
	}

	if reach {
		r.emit(mjai.NewReach(actor))
	}
	r.emit(mjai.NewDahai(actor, pai, tsumogiri))
	r.flushDora()

	if reach && !r.ronnedOn(actor) {
		r.emit(mjai.NewReachAccepted(actor))
	}

	next, isCall = r.nextActor(actor, id)
	return next, isCall, false, nil
}

// nextActor finds who acts after discarder threw id: a pon or daiminkan on
// that tile wins over a chi, which wins over the ordinary draw by shimocha.
func (r *replay) nextActor(discarder, id int) (int, bool) {
	for offset := 1; offset < 4; offset++ {
		seat := (discarder + offset) % 4
		m, ok := r.peekMeld(seat)
		if !ok || (m.Kind != MeldPon && m.Kind != MeldDaiminkan) {
			continue
		}
		if m.Called == id && m.Target(seat) == discarder {
			return seat, true
		}
	}

	shimocha := (discarder + 1) % 4
	if m, ok := r.peekMeld(shimocha); ok && m.Kind == MeldChi && m.Called == id {
		return shimocha, true
	}
	return shimocha, false
}

// ronnedOn reports whether the hand ends with a ron on discarder's last tile.
func (r *replay) ronnedOn(discarder int) bool {
	if !r.kyoku.Result.IsHora() {
		return false
	}
	for seat := 0; seat < 4; seat++ {
		if _, ok := r.peekTake(seat); ok {
			return false
		}
	}
	for _, h := range r.kyoku.Result.Horas {
		if h.FromWho == discarder && h.Who != discarder {
			return true
		}
	}
	return false
}

func (r *replay) peekTake(seat int) (Action, bool) {
	list := r.kyoku.Takes[seat]
	if r.takes[seat] >= len(list) {
		return Action{}, false
	}
	return list[r.takes[seat]], true
}

func (r *replay) peekDiscard(seat int) (Action, bool) {
	list := r.kyoku.Discards[seat]
	if r.discards[seat] >= len(list) {
		return Action{}, false
	}
	return list[r.discards[seat]], true
}

// peekMeld decodes seat's next take if it is a meld string.
func (r *replay) peekMeld(seat int) (Meld, bool) {
	take, ok := r.peekTake(seat)
	if !ok || !take.IsMeld() {
		return Meld{}, false
	}
	m, err := ParseMeld(take.Meld)
	if err != nil {
		return Meld{}, false
	}
	return m, true
}

func (r *replay) revealDora() {
	if r.nextDora >= len(r.kyoku.Dora) {
		return
	}
	marker, err := tile(r.kyoku.Dora[r.nextDora])
	if err != nil {
		return
	}
	r.nextDora++
	r.emit(mjai.NewDora(marker))
}

// flushDora reveals the indicator owed by an earlier open kan or kakan.
func (r *replay) flushDora() {
	if r.pendingDora {
		r.pendingDora = false
		r.revealDora()
	}
}

func (r *replay) checkConsumed() error {
	for seat := 0; seat < 4; seat++ {
		if rest := len(r.kyoku.Takes[seat]) - r.takes[seat]; rest > 0 {
			return fmt.Errorf("%w: seat %d has %d takes left after the hand ended", ErrInconsistent, seat, rest)
		}
		if rest := len(r.kyoku.Discards[seat]) - r.discards[seat]; rest > 0 {
			return fmt.Errorf("%w: seat %d has %d discards left after the hand ended", ErrInconsistent, seat, rest)
		}
	}
	return nil
}

func (r *replay) end() error {
	res := r.kyoku.Result
	if res.IsHora() {
		ura, err := tiles(r.kyoku.Ura)
		if err != nil {
			return err
		}
		for _, h := range res.Horas {
			r.emit(&mjai.Hora{
				Type:       mjai.TypeHora,
				Actor:      h.Who,
				Target:     h.FromWho,
				Deltas:     h.Deltas,
				UraMarkers: ura,
			})
		}
	} else {
		deltas := res.Deltas
		if deltas == nil {
			deltas = []int{0, 0, 0, 0}
		}
		r.emit(&mjai.Ryukyoku{Type: mjai.TypeRyukyoku, Deltas: deltas})
	}

	r.emit(&mjai.EndKyoku{Type: mjai.TypeEndKyoku})
	return nil
}

func (r *replay) emit(ev mjai.Event) {
	r.events = append(r.events, ev)
}

func tile(id int) (mjai.Tile, error) {
	t, err := mjai.TileFromTenhou(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInconsistent, err)
	}
	return t, nil
}

func tiles(ids []int) ([]mjai.Tile, error) {
	out := make([]mjai.Tile, 0, len(ids))
	for _, id := range ids {
		t, err := tile(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
