package tenhou

import "github.com/mjlog/mjconv/pkg/mjai"

// Codec plugs the tenhou parser and the mjai replay into the converter
// pipeline.
type Codec struct {
	parser *Parser
}

// NewCodec creates a codec with the given parser options.
func NewCodec(opts ...ParserOption) (*Codec, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}
	return &Codec{parser: p}, nil
}

// Parse decodes and validates a tenhou.net/6 document.
func (c *Codec) Parse(data []byte) (*Log, error) {
	return c.parser.Parse(data)
}

// Transform replays a validated log into mjai events.
func (c *Codec) Transform(log *Log) ([]mjai.Event, error) {
	return ToMjai(log)
}
