// Package cc invokes a configured C/C++ compiler in compile-only mode so
// configuration probes can test snippets against the real toolchain.
package cc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/zbuildtool/zbuild/internal/toolchain"
)

// Compiler runs compile-only checks with one configured invocation. The
// invocation may embed extra arguments ("clang++ -target ..."); they are
// forwarded on every run.
type Compiler struct {
	invocation string
	style      toolchain.ArgStyle
	env        []string
	scratch    string
}

// New returns a Compiler for the given invocation and argument dialect.
func New(invocation string, style toolchain.ArgStyle) *Compiler {
	return &Compiler{invocation: invocation, style: style}
}

// Setenv adds an environment entry to every compiler invocation. Used to
// pass TERM through for colorized diagnostics, and TMP on windows.
func (c *Compiler) Setenv(key, value string) {
	if value != "" {
		c.env = append(c.env, key+"="+value)
	}
}

// Scratch overrides the directory probe files are written under. Defaults
// to the system temporary directory.
func (c *Compiler) Scratch(dir string) { c.scratch = dir }

// TryCompile writes src to a scratch file with the given extension and runs
// the compiler on it in compile-only mode. It reports false when the
// compiler rejects the snippet; an error is returned only when the tool
// itself cannot be invoked.
func (c *Compiler) TryCompile(src, ext string) (bool, error) {
	argv := strings.Fields(c.invocation)
	if len(argv) == 0 {
		return false, errors.New("cc: empty compiler invocation")
	}

	dir, err := os.MkdirTemp(c.scratch, "zbuild-probe-*")
	if err != nil {
		return false, fmt.Errorf("cc: create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "probe"+ext)
	if err := os.WriteFile(file, []byte(src), 0o644); err != nil {
		return false, fmt.Errorf("cc: write probe source: %w", err)
	}

	obj := filepath.Join(dir, "probe.o")
	args := argv[1:]
	if c.style == toolchain.MSVCCompatible {
		args = append(args, "/nologo", "/c", file, "/Fo:"+obj)
	} else {
		args = append(args, "-c", file, "-o", obj)
	}

	cmd := exec.Command(argv[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.env...)
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			// The compiler ran and rejected the snippet.
			return false, nil
		}
		return false, fmt.Errorf("cc: invoke %s: %w", argv[0], err)
	}
	return true, nil
}
