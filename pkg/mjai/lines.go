package mjai

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single event line; start_kyoku lines are the longest.
const maxLineSize = 1024 * 1024

// Envelope is a decoded event line with only its type resolved.
type Envelope struct {
	Type Type
	Raw  json.RawMessage
}

// ReadLines decodes a newline-delimited mjai stream. Blank lines are ignored.
// Every other line must be a JSON object carrying a string "type".
func ReadLines(r io.Reader) ([]Envelope, error) {
	var out []Envelope

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var head struct {
			Type Type `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &head); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if head.Type == "" {
			return nil, fmt.Errorf("line %d: %w", lineNum, errMissingType)
		}

		out = append(out, Envelope{Type: head.Type, Raw: json.RawMessage(line)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}

	return out, nil
}

var errMissingType = errors.New("event has no type")
