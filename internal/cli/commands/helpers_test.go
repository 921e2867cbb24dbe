package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const testHaipai = `[11,12,13,14,15,16,17,18,19,21,22,23,24]`

// validLog is a one-hand game that ends in an exhaustive draw. It converts to
// start_game, start_kyoku, ryukyoku, end_kyoku and end_game.
const validLog = `{"ver":2.3,"name":["A","B","C","D"],"rule":{"disp":"般南喰赤","aka":1},"log":[` +
	`[[0,0,0],[25000,25000,25000,25000],[41],[],` +
	testHaipai + `,[],[],` + testHaipai + `,[],[],` + testHaipai + `,[],[],` + testHaipai + `,[],[],` +
	`["流局",[1500,-1500,1500,-1500]]]]}`

const validLogEvents = 5

// writeFiles creates files under dir. A name ending in "/" creates a directory.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(path, 0755); err != nil {
				t.Fatalf("Failed to create dir: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

// runCommand executes cmd with args and returns its stdout, stderr and error.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return strings.Count(string(data), "\n")
}
