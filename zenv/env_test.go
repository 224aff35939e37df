package zenv

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/zbuildtool/zbuild/internal/probe"
	"github.com/zbuildtool/zbuild/internal/toolchain"
)

// scriptedTester accepts snippets containing any of the markers.
type scriptedTester struct {
	accept []string
	calls  int
}

func (s *scriptedTester) TryCompile(src, ext string) (bool, error) {
	s.calls++
	for _, marker := range s.accept {
		if strings.Contains(src, marker) {
			return true, nil
		}
	}
	return false, nil
}

// Markers making a scripted toolchain look like libstdc++ release 8:
// filesystem supported, helper library still separate.
func libstdcxx8Markers() []string {
	return []string{
		"#include <ciso646>\nint main",
		"__GLIBCXX__",
		"_GLIBCXX_RELEASE >= 9",
		"_GLIBCXX_RELEASE < 8",
	}
}

func testEnv(tc probe.CompileTester) *Env {
	id := toolchain.Identity{Compiler: "gcc", Style: toolchain.POSIX}
	mode := toolchain.BuildMode{Debug: true, Standard: "c++17"}
	return &Env{
		id:       id,
		mode:     mode,
		flags:    toolchain.Derive(id, mode, "linux"),
		cxx:      "g++",
		cc:       "gcc",
		goos:     "linux",
		buildDir: "build/gcc.posix.64bit.dbg",
		tc:       tc,
	}
}

func TestCloneIsIndependent(t *testing.T) {
	parent := testEnv(nil)
	parent.WithLibraries([]string{"z"}, true)
	parent.AppendLibPath("/opt/lib")

	clone := parent.Clone()
	clone.WithLibraries([]string{"ssl"}, true)
	clone.AppendLibPath("/usr/local/lib")
	clone.AppendIncludePath("/usr/local/include")
	clone.AppendCompileFlags("-fno-rtti")
	clone.Define("CLONE_ONLY")

	if libs := parent.Libraries(); !slices.Equal(libs, []string{"z"}) {
		t.Errorf("parent libraries changed by clone mutation: %v", libs)
	}
	if paths := parent.LibPaths(); !slices.Equal(paths, []string{"/opt/lib"}) {
		t.Errorf("parent lib paths changed by clone mutation: %v", paths)
	}
	if defs := parent.Defines(); len(defs) != 0 {
		t.Errorf("parent defines changed by clone mutation: %v", defs)
	}

	parent.WithLibraries([]string{"m"}, true)
	if libs := clone.Libraries(); !slices.Equal(libs, []string{"z", "ssl"}) {
		t.Errorf("clone libraries changed by parent mutation: %v", libs)
	}

	if clone.Identity() != parent.Identity() {
		t.Error("clone must share the resolved identity by value")
	}
	if clone.Mode() != parent.Mode() {
		t.Error("clone must share the build mode by value")
	}
}

func TestCloneStdlibCache(t *testing.T) {
	tc := &scriptedTester{accept: libstdcxx8Markers()}
	parent := testEnv(tc)

	// A clone made before detection detects independently.
	early := parent.Clone()
	if _, known := early.Stdlib(); known {
		t.Fatal("undetected cache must not be shared")
	}

	if _, err := parent.Configure().DetectStdlib(); err != nil {
		t.Fatalf("DetectStdlib: %v", err)
	}
	probed := tc.calls

	// The early clone still has no cache and probes on its own.
	if _, err := early.Configure().DetectStdlib(); err != nil {
		t.Fatalf("early clone DetectStdlib: %v", err)
	}
	if tc.calls == probed {
		t.Error("early clone should have probed independently")
	}

	// A clone made after detection inherits the resolved cache.
	late := parent.Clone()
	probed = tc.calls
	kind, err := late.Configure().DetectStdlib()
	if err != nil {
		t.Fatalf("late clone DetectStdlib: %v", err)
	}
	if kind != probe.Libstdcxx {
		t.Errorf("late clone stdlib = %v, want %v", kind, probe.Libstdcxx)
	}
	if tc.calls != probed {
		t.Error("late clone must reuse the inherited cache, not re-probe")
	}
}

func TestWithLibrariesPrepend(t *testing.T) {
	env := testEnv(nil)
	env.WithLibraries([]string{"b", "c"}, true)
	env.WithLibraries([]string{"a"}, false)
	if libs := env.Libraries(); !slices.Equal(libs, []string{"a", "b", "c"}) {
		t.Errorf("libraries = %v, want [a b c]", libs)
	}
}

func TestConfigureFilesystem(t *testing.T) {
	tests := []struct {
		name     string
		accept   []string
		wantLibs []string
		wantErr  bool
	}{
		{
			name:     "libstdc++ below threshold links stdc++fs",
			accept:   libstdcxx8Markers(),
			wantLibs: []string{"stdc++fs"},
		},
		{
			name: "libc++ below threshold links c++fs",
			accept: []string{
				"#include <ciso646>\nint main",
				"_LIBCPP_VERSION",
				"_LIBCPP_VERSION >= 9000",
				"_LIBCPP_VERSION < 7000",
			},
			wantLibs: []string{"c++fs"},
		},
		{
			name: "current libstdc++ needs no link entry",
			accept: []string{
				"#include <ciso646>\nint main",
				"__GLIBCXX__",
				"_GLIBCXX_RELEASE < 8",
			},
			wantLibs: nil,
		},
		{
			name: "unsupported filesystem is refused",
			accept: []string{
				"#include <ciso646>\nint main",
				"__GLIBCXX__",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testEnv(&scriptedTester{accept: tt.accept})
			err := env.ConfigureFilesystem()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error for unsupported filesystem")
				}
				return
			}
			if err != nil {
				t.Fatalf("ConfigureFilesystem: %v", err)
			}
			if libs := env.Libraries(); !slices.Equal(libs, tt.wantLibs) {
				t.Errorf("libraries = %v, want %v", libs, tt.wantLibs)
			}
		})
	}
}

func TestApply(t *testing.T) {
	env := testEnv(nil)
	env.WithLibraries([]string{"z"}, true)
	env.AppendLibPath("/opt/lib")
	env.AppendIncludePath("/opt/include")
	env.Define("NDEBUG")
	env.AppendCompileFlags("-fno-exceptions")

	var rec Recorder
	env.Apply(&rec)

	if !slices.Contains(rec.CompileFlags, "-std=c++17") || !slices.Contains(rec.CompileFlags, "-fno-exceptions") {
		t.Errorf("compile flags not applied: %v", rec.CompileFlags)
	}
	if !slices.Equal(rec.Libraries, []string{"z"}) {
		t.Errorf("libraries not applied: %v", rec.Libraries)
	}
	if !slices.Equal(rec.LibPaths, []string{"/opt/lib"}) {
		t.Errorf("lib paths not applied: %v", rec.LibPaths)
	}
	if !slices.Equal(rec.IncludePaths, []string{"/opt/include"}) {
		t.Errorf("include paths not applied: %v", rec.IncludePaths)
	}
	if !slices.Equal(rec.Defines, []string{"NDEBUG"}) {
		t.Errorf("defines not applied: %v", rec.Defines)
	}
}

func TestVariantDirAndBinPath(t *testing.T) {
	env := testEnv(nil)
	if got, want := env.BinPath(), "build/gcc.posix.64bit.dbg/bin"; got != want {
		t.Errorf("BinPath = %q, want %q", got, want)
	}
	env.SetVariantDir("core")
	if got, want := env.VariantDir(), "build/gcc.posix.64bit.dbg/core"; got != want {
		t.Errorf("VariantDir = %q, want %q", got, want)
	}
	if got, want := env.BinPath(), "build/gcc.posix.64bit.dbg/core/bin"; got != want {
		t.Errorf("BinPath = %q, want %q", got, want)
	}
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.cpp", "sub/b.cpp", "sub/deep/c.cpp", "sub/ignore.h"} {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("int x;\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	env := testEnv(nil)
	got, err := env.Glob(dir, "**/*.cpp")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.cpp"),
		filepath.Join(dir, "sub/b.cpp"),
		filepath.Join(dir, "sub/deep/c.cpp"),
	}
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("Glob = %v, want %v", got, want)
	}
}
