// Package plugins runs external mjconv-<command> binaries for commands mjconv
// does not implement itself, such as replay viewers or review engines that
// consume converted mjai files. Discovery works like kubectl and git plugins.
package plugins

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "mjconv-"

// KnownPlugins lists commands that are commonly provided as plugins. They get
// a more specific message when the binary is missing.
var KnownPlugins = map[string]string{
	"review": "Runs an mjai review engine over converted games.",
	"view":   "Opens converted games in a replay viewer.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// FindPlugin returns the path of the mjconv-<command> binary, searching
//  1. the directory of the mjconv binary
//  2. ~/.mjconv/plugins/
//  3. PATH
func FindPlugin(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	pluginName := Prefix + command

	// 1. Same directory as the mjconv binary
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		candidate := filepath.Join(execDir, pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	// 2. ~/.mjconv/plugins/
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(homeDir, ".mjconv", "plugins", pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	// 3. PATH
	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments and standard streams and
// returns its exit code.
func Execute(pluginPath string, args []string, stdout, stderr io.Writer) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin binaries are user-installed
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err != nil {
		// Extract exit code from error if available
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		// If we can't get the exit code, return 1
		_, _ = fmt.Fprintf(stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
// If the command is a known plugin, includes information about where to get it.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("unknown command %q for \"mjconv\"\n", command))

	// Check if this is a known plugin
	if info, ok := KnownPlugins[command]; ok {
		sb.WriteString(fmt.Sprintf("\n%q is available as a plugin.\n", command))
		sb.WriteString(info)
		sb.WriteString("\n\nInstall the plugin binary as one of:\n")
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	// Show installation locations
	sb.WriteString(fmt.Sprintf("  - %s%s in the same directory as mjconv\n", Prefix, command))
	sb.WriteString(fmt.Sprintf("  - ~/.mjconv/plugins/%s%s\n", Prefix, command))
	sb.WriteString(fmt.Sprintf("  - %s%s anywhere in your PATH\n", Prefix, command))

	sb.WriteString("\nTo convert a directory, run 'mjconv <input_directory> <output_directory>'.")
	sb.WriteString("\nRun 'mjconv --help' for usage.")

	return sb.String()
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	// On Unix, check executable bit
	// On Windows, just check if file exists (executable bit doesn't apply)
	if info.Mode().IsRegular() {
		// Check if any execute bit is set
		return info.Mode()&0111 != 0
	}

	return false
}
