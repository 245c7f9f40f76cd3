// Package plugins runs external eprof-<command> binaries for subcommands
// that eprof does not build in, in the style of git and kubectl.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "eprof-"

// KnownPlugins lists plugins with an official implementation.
var KnownPlugins = map[string]string{
	"program": "Flashes the profiled firmware onto a board over the debug probe. Ships with the board support package.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// SearchDirs returns the directories searched before PATH, in order:
// the eprof binary's directory, then ~/.eprof/plugins.
func SearchDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".eprof", "plugins"))
	}
	return dirs
}

// FindPlugin returns the path of the eprof-<command> binary.
func FindPlugin(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	name := Prefix + command

	for _, dir := range SearchDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", ErrPluginNotFound
}

// Stdio holds the streams connected to a plugin process.
type Stdio struct {
	In       io.Reader
	Out, Err io.Writer
}

// Execute runs the plugin and returns its exit code.
func Execute(ctx context.Context, pluginPath string, args []string, stdio Stdio) int {
	cmd := exec.CommandContext(ctx, pluginPath, args...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	err := cmd.Run()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if stdio.Err != nil {
		fmt.Fprintf(stdio.Err, "Error executing plugin: %v\n", err)
	}
	return 1
}

// FormatNotFoundError describes where an unknown command's plugin could be
// installed.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"eprof\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n%s\n\nInstall the plugin binary as one of:\n", command, info)
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	fmt.Fprintf(&sb, "  - %s%s in the same directory as eprof\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.eprof/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'eprof --help' for usage.")

	return sb.String()
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
