package tenhou

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"github.com/mjlog/mjconv/pkg/detector"
)

// DefaultVersionConstraint accepts every tenhou.net/6 revision seen in the wild.
const DefaultVersionConstraint = ">= 2.3"

var (
	// ErrNotTenhou is returned for documents that are not tenhou.net/6 records.
	ErrNotTenhou = errors.New("not a tenhou.net/6 log")
	// ErrAlreadyMjai is returned for documents that are already mjai events.
	ErrAlreadyMjai = errors.New("document is already mjai events")
	// ErrUnsupportedVersion is returned when "ver" fails the version constraint.
	ErrUnsupportedVersion = errors.New("unsupported log version")
)

// Parser turns raw documents into validated logs.
type Parser struct {
	constraint *semver.Constraints
	validate   *validator.Validate
	detector   *detector.Detector
}

// ParserOption configures a Parser.
type ParserOption func(*parserSettings)

type parserSettings struct {
	versionConstraint string
}

// WithVersionConstraint sets the semver constraint applied to "ver".
// An empty constraint disables the check.
func WithVersionConstraint(c string) ParserOption {
	return func(s *parserSettings) {
		s.versionConstraint = c
	}
}

// NewParser creates a parser.
func NewParser(opts ...ParserOption) (*Parser, error) {
	settings := parserSettings{versionConstraint: DefaultVersionConstraint}
	for _, opt := range opts {
		opt(&settings)
	}

	p := &Parser{
		validate: newValidator(),
		detector: detector.New(),
	}

	if settings.versionConstraint != "" {
		c, err := semver.NewConstraint(settings.versionConstraint)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint %q: %w", settings.versionConstraint, err)
		}
		p.constraint = c
	}

	return p, nil
}

// Parse decodes and validates one tenhou.net/6 document.
func (p *Parser) Parse(data []byte) (*Log, error) {
	switch res := p.detector.Detect(data); res.Format {
	case detector.FormatTenhou6:
	case detector.FormatMjai:
		return nil, ErrAlreadyMjai
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotTenhou, res.Reason)
	}

	version, err := p.checkVersion(data)
	if err != nil {
		return nil, err
	}

	var raw RawLog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding log: %w", err)
	}

	if err := p.validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("invalid log: %w", err)
	}

	log, err := newLog(&raw)
	if err != nil {
		return nil, fmt.Errorf("invalid log: %w", err)
	}
	log.Version = version

	return log, nil
}

// checkVersion reads the optional "ver" field without a full decode.
func (p *Parser) checkVersion(data []byte) (string, error) {
	ver := gjson.GetBytes(data, "ver")
	if !ver.Exists() {
		return "", nil
	}

	s := ver.String()
	if p.constraint == nil {
		return s, nil
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrUnsupportedVersion, s, err)
	}
	if !p.constraint.Check(v) {
		return "", fmt.Errorf("%w %q (want %s)", ErrUnsupportedVersion, s, p.constraint)
	}

	return s, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("tile", func(fl validator.FieldLevel) bool {
		return isTile(int(fl.Field().Int()))
	})
	return v
}

// isTile reports whether id names a real tile.
func isTile(id int) bool {
	switch {
	case id >= 11 && id <= 39:
		return id%10 != 0
	case id >= 41 && id <= 47:
		return true
	case id >= 51 && id <= 53:
		return true
	default:
		return false
	}
}

func newLog(raw *RawLog) (*Log, error) {
	log := &Log{
		Rule:       raw.Rule.Disp,
		GameLength: parseGameLength(raw.Rule.Disp),
		Aka:        raw.Rule.Aka+raw.Rule.Aka51+raw.Rule.Aka52+raw.Rule.Aka53 > 0,
	}
	copy(log.Names[:], raw.Names)

	for i := range raw.Log {
		k, err := newKyoku(&raw.Log[i])
		if err != nil {
			return nil, fmt.Errorf("kyoku %d: %w", i, err)
		}
		log.Kyokus = append(log.Kyokus, k)
	}

	return log, nil
}

// parseGameLength reads the length from a rule description such as
// "般南喰赤". A record without a description is treated as a hanchan.
func parseGameLength(disp string) GameLength {
	switch {
	case strings.Contains(disp, "三"):
		return GameLengthSanma
	case strings.Contains(disp, "東"):
		return GameLengthTonpuu
	case strings.Contains(disp, "南"), disp == "":
		return GameLengthHanchan
	default:
		return GameLengthUnknown
	}
}

func newKyoku(raw *RawKyoku) (Kyoku, error) {
	k := Kyoku{
		Num:      raw.Meta[0],
		Honba:    raw.Meta[1],
		Kyotaku:  raw.Meta[2],
		Dora:     raw.Dora,
		Ura:      raw.Ura,
		Haipai:   raw.Haipai,
		Takes:    raw.Takes,
		Discards: raw.Discards,
	}
	copy(k.Scores[:], raw.Scores)

	result, err := decodeResult(raw.Result)
	if err != nil {
		return Kyoku{}, fmt.Errorf("result: %w", err)
	}
	k.Result = result

	return k, nil
}

// decodeResult decodes ["和了", deltas, info, deltas, info, ...] or
// [name, deltas?].
func decodeResult(parts []json.RawMessage) (Result, error) {
	var res Result
	if err := json.Unmarshal(parts[0], &res.Name); err != nil {
		return Result{}, fmt.Errorf("name: %w", err)
	}

	rest := parts[1:]
	if !res.IsHora() {
		if len(rest) > 0 {
			deltas, err := decodeDeltas(rest[0])
			if err != nil {
				return Result{}, err
			}
			res.Deltas = deltas
		}
		return res, nil
	}

	if len(rest) == 0 || len(rest)%2 != 0 {
		return Result{}, fmt.Errorf("%s has %d trailing entries, want deltas/info pairs", res.Name, len(rest))
	}
	for i := 0; i < len(rest); i += 2 {
		deltas, err := decodeDeltas(rest[i])
		if err != nil {
			return Result{}, err
		}

		var info []json.RawMessage
		if err := json.Unmarshal(rest[i+1], &info); err != nil {
			return Result{}, fmt.Errorf("hora info: %w", err)
		}
		if len(info) < 3 {
			return Result{}, fmt.Errorf("hora info has %d entries, want at least 3", len(info))
		}

		var seats [3]int
		for j := range seats {
			if err := json.Unmarshal(info[j], &seats[j]); err != nil {
				return Result{}, fmt.Errorf("hora info[%d]: %w", j, err)
			}
			if seats[j] < 0 || seats[j] > 3 {
				return Result{}, fmt.Errorf("hora info[%d]: seat %d out of range", j, seats[j])
			}
		}

		res.Horas = append(res.Horas, Hora{
			Who:     seats[0],
			FromWho: seats[1],
			PaoWho:  seats[2],
			Deltas:  deltas,
		})
	}

	return res, nil
}

func decodeDeltas(data json.RawMessage) ([]int, error) {
	var deltas []int
	if err := json.Unmarshal(data, &deltas); err != nil {
		return nil, fmt.Errorf("deltas: %w", err)
	}
	if len(deltas) != 4 {
		return nil, fmt.Errorf("deltas has %d entries, want 4", len(deltas))
	}
	return deltas, nil
}
