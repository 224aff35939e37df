// Package zenv holds the resolved build configuration: toolchain identity,
// derived flags, accumulated library state and the feature-probe cache.
package zenv

import (
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zbuildtool/zbuild/internal/probe"
	"github.com/zbuildtool/zbuild/internal/toolchain"
	"github.com/zbuildtool/zbuild/internal/vars"
)

// Env is a configuration handle. It owns its mutable lists exclusively;
// Clone is the only sanctioned way to share a starting point across
// independent configurations.
type Env struct {
	id    toolchain.Identity
	mode  toolchain.BuildMode
	flags toolchain.FlagSet
	cxx   string
	cc    string
	goos  string

	buildDir   string
	variantDir string

	libs         []string
	libPaths     []string
	includePaths []string
	defines      []string
	compileFlags []string

	stdlib      probe.StdlibKind
	stdlibKnown bool

	vars *vars.Set
	tc   probe.CompileTester
}

// Vars returns the resolved build-variable set, including any user-defined
// declarations passed to Configure.
func (e *Env) Vars() *vars.Set { return e.vars }

// Identity returns the resolved toolchain identity. Fixed at resolution.
func (e *Env) Identity() toolchain.Identity { return e.id }

// Mode returns the build mode the configuration was resolved with.
func (e *Env) Mode() toolchain.BuildMode { return e.mode }

// Flags returns copies of the derived compile and link flag lists, with any
// accumulated custom compile flags appended.
func (e *Env) Flags() toolchain.FlagSet {
	return toolchain.FlagSet{
		Compile: append(slices.Clone(e.flags.Compile), e.compileFlags...),
		Link:    slices.Clone(e.flags.Link),
	}
}

// CXX and CC return the effective compiler invocations.
func (e *Env) CXX() string { return e.cxx }
func (e *Env) CC() string  { return e.cc }

// BuildDir returns the configuration's output root.
func (e *Env) BuildDir() string { return e.buildDir }

// SetVariantDir selects a scratch subdirectory under the build root for a
// flavor of this configuration.
func (e *Env) SetVariantDir(name string) {
	e.variantDir = path.Join(e.buildDir, name)
}

// VariantDir returns the active variant directory, empty when unset.
func (e *Env) VariantDir() string { return e.variantDir }

// BinPath returns where built binaries land: bin/ under the variant
// directory if one is set, otherwise under the build root.
func (e *Env) BinPath() string {
	root := e.buildDir
	if e.variantDir != "" {
		root = e.variantDir
	}
	return path.Join(root, "bin")
}

// WithLibraries accumulates libraries to link. Order is preserved; atEnd
// selects whether they go after or before the existing entries.
func (e *Env) WithLibraries(libs []string, atEnd bool) {
	if atEnd {
		e.libs = append(e.libs, libs...)
	} else {
		e.libs = append(slices.Clone(libs), e.libs...)
	}
}

// AppendLibPath accumulates a library search path.
func (e *Env) AppendLibPath(p string) { e.libPaths = append(e.libPaths, p) }

// AppendIncludePath accumulates a header search path.
func (e *Env) AppendIncludePath(p string) { e.includePaths = append(e.includePaths, p) }

// Define accumulates a preprocessor definition.
func (e *Env) Define(macro string) { e.defines = append(e.defines, macro) }

// AppendCompileFlags accumulates custom compile flags on top of the derived
// set.
func (e *Env) AppendCompileFlags(flags ...string) {
	e.compileFlags = append(e.compileFlags, flags...)
}

// Libraries returns a copy of the accumulated library list.
func (e *Env) Libraries() []string { return slices.Clone(e.libs) }

// LibPaths returns a copy of the accumulated library search paths.
func (e *Env) LibPaths() []string { return slices.Clone(e.libPaths) }

// IncludePaths returns a copy of the accumulated header search paths.
func (e *Env) IncludePaths() []string { return slices.Clone(e.includePaths) }

// Defines returns a copy of the accumulated preprocessor definitions.
func (e *Env) Defines() []string { return slices.Clone(e.defines) }

// Glob returns the files under dir matching a doublestar pattern such as
// "**/*.cpp", with paths relative to dir's parent like the originals.
func (e *Env) Glob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, m)
	}
	return paths, nil
}

// Stdlib reports the cached standard-library family, if detection has run.
// Part of the probe.CacheHost contract.
func (e *Env) Stdlib() (probe.StdlibKind, bool) { return e.stdlib, e.stdlibKnown }

// SetStdlib records a detected standard-library family. Part of the
// probe.CacheHost contract.
func (e *Env) SetStdlib(k probe.StdlibKind) {
	e.stdlib = k
	e.stdlibKnown = true
}

// Configure returns a probe session scoped to this handle: it compiles
// against this configuration's toolchain and caches on this handle only.
func (e *Env) Configure() *probe.Session {
	return probe.NewSession(e.tc, e, e.goos)
}

// Clone duplicates the derived mutable state into an independent handle.
// Lists and the stdlib cache are copied by value: later mutation of either
// handle is never observable from the other. A clone made before stdlib
// detection detects independently.
func (e *Env) Clone() *Env {
	dup := *e
	dup.libs = slices.Clone(e.libs)
	dup.libPaths = slices.Clone(e.libPaths)
	dup.includePaths = slices.Clone(e.includePaths)
	dup.defines = slices.Clone(e.defines)
	dup.compileFlags = slices.Clone(e.compileFlags)
	dup.flags = toolchain.FlagSet{
		Compile: slices.Clone(e.flags.Compile),
		Link:    slices.Clone(e.flags.Link),
	}
	return &dup
}
