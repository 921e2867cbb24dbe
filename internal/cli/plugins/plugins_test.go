package plugins

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindPlugin_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := FindPlugin("nonexistent-plugin-xyz")
	if err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestFindPlugin_RejectsPaths(t *testing.T) {
	for _, name := range []string{"", "../review", "sub/review"} {
		if _, err := FindPlugin(name); err != ErrPluginNotFound {
			t.Errorf("FindPlugin(%q) error = %v, want ErrPluginNotFound", name, err)
		}
	}
}

func TestFindPlugin_InPluginsDir(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	pluginsDir := filepath.Join(homeDir, ".mjconv", "plugins")
	if err := os.MkdirAll(pluginsDir, 0755); err != nil {
		t.Fatalf("failed to create plugins dir: %v", err)
	}

	pluginPath := filepath.Join(pluginsDir, "mjconv-testplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\necho test"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("testplugin")
	if err != nil {
		t.Errorf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestFindPlugin_InPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	binDir := t.TempDir()
	t.Setenv("PATH", binDir)

	pluginPath := filepath.Join(binDir, "mjconv-pathplugin")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	found, err := FindPlugin("pathplugin")
	if err != nil {
		t.Fatalf("expected to find plugin, got error: %v", err)
	}
	if found != pluginPath {
		t.Errorf("expected %s, got %s", pluginPath, found)
	}
}

func TestExecute(t *testing.T) {
	pluginPath := filepath.Join(t.TempDir(), "mjconv-echo")
	script := "#!/bin/sh\necho \"args: $*\"\necho oops >&2\nexit 3\n"
	if err := os.WriteFile(pluginPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to create test plugin: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := Execute(pluginPath, []string{"a", "b"}, &stdout, &stderr)

	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if got := stdout.String(); got != "args: a b\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "oops\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestExecute_NotRunnable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(filepath.Join(t.TempDir(), "missing"), nil, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Error executing plugin") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestFormatNotFoundError_KnownPlugin(t *testing.T) {
	err := FormatNotFoundError("review")

	if !strings.Contains(err, "review") {
		t.Error("expected error to contain 'review'")
	}
	if !strings.Contains(err, "available as a plugin") {
		t.Error("expected error to mention plugin availability")
	}
	if !strings.Contains(err, "mjconv-review") {
		t.Error("expected error to mention mjconv-review")
	}
}

func TestFormatNotFoundError_UnknownPlugin(t *testing.T) {
	err := FormatNotFoundError("unknown")

	if !strings.Contains(err, "unknown") {
		t.Error("expected error to contain 'unknown'")
	}
	if !strings.Contains(err, "mjconv-unknown") {
		t.Error("expected error to mention mjconv-unknown")
	}
	if strings.Contains(err, "available as a plugin") {
		t.Error("should not mention plugin availability for unknown plugins")
	}
	if !strings.Contains(err, "mjconv <input_directory> <output_directory>") {
		t.Error("expected error to show the convert usage")
	}
}

func TestIsExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	nonExec := filepath.Join(tmpDir, "nonexec")
	if err := os.WriteFile(nonExec, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if isExecutable(nonExec) {
		t.Error("non-executable file should not be detected as executable")
	}

	exec := filepath.Join(tmpDir, "exec")
	if err := os.WriteFile(exec, []byte("test"), 0755); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if !isExecutable(exec) {
		t.Error("executable file should be detected as executable")
	}

	if isExecutable(tmpDir) {
		t.Error("directory should not be detected as executable")
	}

	if isExecutable(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("non-existent file should not be detected as executable")
	}
}
