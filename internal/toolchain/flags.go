package toolchain

import (
	"strconv"

	"github.com/qiniu/x/log"
)

// BuildMode is the caller-selected build configuration, fixed for the
// lifetime of a configuration handle.
type BuildMode struct {
	Debug          bool
	Coverage       bool   // only meaningful combined with Debug
	Sanitizers     bool   // only meaningful combined with Debug
	Standard       string // language standard, e.g. "c++17"
	DynamicRuntime bool   // MSVC runtime library selection
}

// FlagSet is an ordered pair of compile and link flag lists.
type FlagSet struct {
	Compile []string
	Link    []string
}

// Derive produces the flag set for an identity/mode pair. goos selects
// platform-specific behavior (the windows sanitizer fallback); pass
// runtime.GOOS outside of tests.
func Derive(id Identity, mode BuildMode, goos string) FlagSet {
	if id.Style == MSVCCompatible {
		return deriveMSVC(mode)
	}
	return derivePOSIX(id, mode, goos)
}

func derivePOSIX(id Identity, mode BuildMode, goos string) FlagSet {
	var fs FlagSet
	fs.Compile = append(fs.Compile,
		"-std="+mode.Standard, "-pedantic", "-Wall", "-Wextra", "-Wno-c++11-narrowing")

	if mode.Debug {
		fs.Compile = append(fs.Compile, "-g", "-O0")
	} else {
		fs.Compile = append(fs.Compile, "-O3")
	}

	if mode.Debug && mode.Coverage {
		fs.Compile = append(fs.Compile, "--coverage")
		fs.Link = append(fs.Link, "--coverage")
	}

	if mode.Debug && mode.Sanitizers {
		switch {
		case id.Compiler == "msvc":
			// True MSVC behind a POSIX driver cannot take UBSan flags.
		case goos == "windows":
			log.Warn("MinGW has no libubsan; crashing on undefined behavior instead (-fsanitize-undefined-trap-on-error)")
			fs.Compile = append(fs.Compile, "-fsanitize=undefined", "-fsanitize-undefined-trap-on-error")
		default:
			fs.Compile = append(fs.Compile, "-fsanitize=undefined")
			fs.Link = append(fs.Link, "-fsanitize=undefined")
		}
	}
	return fs
}

func deriveMSVC(mode BuildMode) FlagSet {
	var fs FlagSet
	// /W4 and /Wall warn into dependency headers; /W3 is the usable level.
	fs.Compile = append(fs.Compile, "/std:"+mode.Standard, "/W3", "/EHsc", "/FS")

	runtimeFlag := func(debug bool) string {
		switch {
		case debug && mode.DynamicRuntime:
			return "/MDd"
		case debug:
			return "/MTd"
		case mode.DynamicRuntime:
			return "/MD"
		}
		return "/MT"
	}

	if mode.Debug {
		fs.Compile = append(fs.Compile, runtimeFlag(true))
		fs.Link = append(fs.Link, "/DEBUG")
	} else {
		fs.Compile = append(fs.Compile, "/O2", runtimeFlag(false))
	}
	return fs
}

// PlatformName maps a GOOS value onto the platform tag used in synthesized
// build paths. Anything that is not windows or darwin counts as posix.
func PlatformName(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "darwin":
		return "darwin"
	}
	return "posix"
}

// OutputDir synthesizes the legacy variant build root for an identity and
// debug mode, e.g. "build/clang.posix.64bit.dbg/". The tag disambiguates
// concurrent debug/release/toolchain combinations sharing one tree.
func OutputDir(id Identity, debug bool, goos string) string {
	tag := "release"
	if debug {
		tag = "dbg"
	}
	return "build/" + id.Compiler + "." + PlatformName(goos) + "." +
		strconv.Itoa(strconv.IntSize) + "bit." + tag + "/"
}
