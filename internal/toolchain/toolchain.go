// Package toolchain resolves the identity of a configured C/C++ compiler
// and derives the compile/link flags and output paths that identity implies.
package toolchain

import (
	"os"
	"strings"

	"github.com/qiniu/x/log"
)

// ArgStyle is the command-line dialect a compiler front end accepts.
type ArgStyle int

const (
	// POSIX covers dash-prefixed arguments (gcc, clang).
	POSIX ArgStyle = iota + 1
	// MSVCCompatible covers slash-prefixed arguments (cl, clang-cl).
	MSVCCompatible
)

func (s ArgStyle) String() string {
	switch s {
	case POSIX:
		return "posix"
	case MSVCCompatible:
		return "msvc-compatible"
	}
	return "unknown"
}

// Identity is the normalized compiler family name plus its argument dialect.
// It never changes once resolved for a configuration.
type Identity struct {
	Compiler string
	Style    ArgStyle
}

// EnvSnapshot carries every process-environment value resolution reads, so
// that resolution stays a pure function of its inputs. Callers populate it
// once per build invocation, typically via Snapshot.
type EnvSnapshot struct {
	CXX          string // compiler override for the C++ role
	CC           string // compiler override for the C role
	Term         string // terminal capability, passed through for colorized tool output
	Tmp          string // temporary directory, consumed on windows-like platforms
	DebugDefault string // raw ZBUILD_DEBUG value, empty when unset
}

// Snapshot reads the environment variables this package consumes.
func Snapshot() EnvSnapshot {
	return EnvSnapshot{
		CXX:          os.Getenv("CXX"),
		CC:           os.Getenv("CC"),
		Term:         os.Getenv("TERM"),
		Tmp:          os.Getenv("TMP"),
		DebugDefault: os.Getenv("ZBUILD_DEBUG"),
	}
}

// Resolution is the outcome of compiler detection: the identity plus the
// effective C++/C invocations after any system override was applied.
type Resolution struct {
	Identity Identity
	CXX      string
	CC       string
}

// msvcIndirection is what build engines set CXX to when the MSVC driver
// owns both compiler roles.
const msvcIndirection = "$CC"

// compilerFamilies maps executable-name prefixes onto normalized family
// names. Order matters: clang must be tried before cl.
var compilerFamilies = []struct {
	prefix, family string
}{
	{"g++", "gcc"},
	{"gcc", "gcc"},
	{"clang++", "clang"},
	{"clang", "clang"},
	{"msvc", "msvc"},
	{"cl", "msvc"},
}

// Resolve determines the toolchain identity for the configured cxx/cc
// invocations. When useSystem is set, non-empty CXX/CC values from env
// replace the configured invocations independently of each other.
// Detection never fails outright: an unrecognized compiler degrades to a
// pass-through name with POSIX argument assumptions and a warning.
func Resolve(cxx, cc string, useSystem bool, env EnvSnapshot) Resolution {
	if useSystem {
		if v := strings.TrimSpace(env.CXX); v != "" {
			cxx = env.CXX
		}
		if v := strings.TrimSpace(env.CC); v != "" {
			cc = env.CC
		}
	}

	if cxx == msvcIndirection || cxx == "cl" {
		return Resolution{Identity{"msvc", MSVCCompatible}, cxx, cc}
	}

	// A manual override such as "clang++ -target x86_64-pc-windows-gnu"
	// must not defeat detection: only the executable name counts.
	name, _, _ := strings.Cut(cxx, " ")

	if name == "clang-cl" {
		return Resolution{Identity{"clang-cl", MSVCCompatible}, cxx, cc}
	}

	for _, f := range compilerFamilies {
		if strings.HasPrefix(name, f.prefix) {
			return Resolution{Identity{f.family, POSIX}, cxx, cc}
		}
	}

	log.Warnf("unknown compiler %q: normalization failed, assuming POSIX-style arguments", name)
	return Resolution{Identity{name, POSIX}, cxx, cc}
}
