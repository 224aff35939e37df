// Package probe answers yes/no toolchain capability questions by compiling
// small source snippets against the live compiler.
package probe

import (
	"errors"
	"fmt"
)

// CompileTester is the single capability probes need from the build engine:
// compile (not link, not run) a snippet and report whether the toolchain
// accepted it. A false result means the snippet was rejected; a non-nil
// error means the tool itself could not be invoked.
type CompileTester interface {
	TryCompile(src, ext string) (bool, error)
}

// Fatal probe errors. All of them abort the configuration phase; none of
// them mean "feature absent".
var (
	// ErrToolchainBroken marks a compiler invocation that failed for
	// reasons other than rejecting the input.
	ErrToolchainBroken = errors.New("toolchain invocation failed")
	// ErrBaselineProbe means the minimal feature-test header is missing,
	// so no further feature probing can be trusted.
	ErrBaselineProbe = errors.New("baseline feature-test header unavailable")
	// ErrStdlibUnknown means none of the known standard-library families
	// matched.
	ErrStdlibUnknown = errors.New("failed to detect standard library family")
)

// StdlibKind identifies a standard-library implementation.
type StdlibKind int

const (
	Libstdcxx StdlibKind = iota + 1
	Libcxx
	MSVCSTL
)

func (k StdlibKind) String() string {
	switch k {
	case Libstdcxx:
		return "libstdc++"
	case Libcxx:
		return "libc++"
	case MSVCSTL:
		return "msvc-stl"
	}
	return "unknown"
}

// FeatureSupport is the outcome of a single feature probe.
type FeatureSupport struct {
	Supported            bool
	RequiresExplicitLink bool
}

// CacheHost is the slice of a configuration handle that a session caches
// detection results on. Each session probes and caches against exactly one
// host, so forked configurations detect independently.
type CacheHost interface {
	Stdlib() (StdlibKind, bool)
	SetStdlib(StdlibKind)
}

// Func is a caller-registered probe run through Session.Run.
type Func func(s *Session) (bool, error)

// Session scopes a run of probes against one configuration handle.
type Session struct {
	tc    CompileTester
	host  CacheHost
	goos  string
	extra map[string]Func
}

// NewSession wraps a compile tester and the cache host it should record
// results on. goos selects platform-gated probe behavior; pass runtime.GOOS
// outside of tests.
func NewSession(tc CompileTester, host CacheHost, goos string) *Session {
	return &Session{tc: tc, host: host, goos: goos, extra: make(map[string]Func)}
}

// TryCompile forwards to the underlying tester, tagging invocation failures
// so callers can tell "feature absent" apart from "toolchain broken".
func (s *Session) TryCompile(src, ext string) (bool, error) {
	ok, err := s.tc.TryCompile(src, ext)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrToolchainBroken, err)
	}
	return ok, nil
}

// Register adds a named caller-defined probe to the session.
func (s *Session) Register(name string, fn Func) {
	s.extra[name] = fn
}

// Run executes a probe previously added with Register.
func (s *Session) Run(name string) (bool, error) {
	fn, ok := s.extra[name]
	if !ok {
		return false, fmt.Errorf("probe not registered: %s", name)
	}
	return fn(s)
}
