package detector

// Format identifies the kind of game record a document holds.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatTenhou6 Format = "tenhou6" // tenhou.net/6 JSON document
	FormatMjai    Format = "mjai"    // newline-delimited mjai events
)

// FormatInfo describes a detectable format for help and report output.
type FormatInfo struct {
	Format      Format
	Name        string
	Description string
	Example     string
}

// KnownFormats returns the formats the detector can recognize, in the order
// they are tried.
func KnownFormats() []FormatInfo {
	return []FormatInfo{
		{
			Format:      FormatTenhou6,
			Name:        "tenhou.net/6",
			Description: "single JSON object with a \"log\" array of hands",
			Example:     `{"ver":2.3,"name":["A","B","C","D"],"rule":{"disp":"般南喰赤","aka":1},"log":[...]}`,
		},
		{
			Format:      FormatMjai,
			Name:        "mjai",
			Description: "one JSON event object per line, each with a \"type\" field",
			Example:     `{"type":"dahai","actor":0,"pai":"5m","tsumogiri":false}`,
		},
	}
}

func (f Format) String() string {
	return string(f)
}
