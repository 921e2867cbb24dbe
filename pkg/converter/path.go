package converter

import (
	"path/filepath"
	"slices"
	"strings"
)

var eligibleExtensions = []string{"json", "txt"}

// Extension returns the text after the last dot of the base name and whether
// the name has an extension at all. A leading dot does not start an
// extension, so ".hidden" has none while "game." has an empty one.
func Extension(name string) (string, bool) {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return "", false
	}
	return base[i+1:], true
}

// Stem returns the base name without its final extension.
func Stem(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// IsEligible reports whether a file name passes the extension filter. Names
// without an extension are eligible; matching is case-sensitive.
func IsEligible(name string) bool {
	ext, ok := Extension(name)
	if !ok {
		return true
	}
	return slices.Contains(eligibleExtensions, ext)
}

// OutputPath returns where the events of inputPath are written.
func OutputPath(outputDir, inputPath string) string {
	return filepath.Join(outputDir, Stem(inputPath)+".json")
}
