package zenv

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/qiniu/x/log"

	"github.com/zbuildtool/zbuild/internal/probe"
	"github.com/zbuildtool/zbuild/internal/toolchain"
	"github.com/zbuildtool/zbuild/internal/vars"
	"github.com/zbuildtool/zbuild/pkgs/cc"
)

// Version is the tool version checked against required_version gates in
// zbuild.toml.
const Version = "v0.4.0"

// ErrFatalConfig marks errors that abort the whole configuration phase.
// No handle is returned alongside it, so a failed resolution can never
// leave a half-mutated configuration in use.
var ErrFatalConfig = errors.New("fatal configuration error")

// DefaultConfigFile is the project file consulted for option values.
const DefaultConfigFile = "zbuild.toml"

// Options configures the top-level resolution.
type Options struct {
	DefaultDebug   bool // debug unless overridden by ZBUILD_DEBUG or zbuild.toml
	SystemCompiler bool // honor CXX/CC from the environment
	Standard       string
	Sanitizers     bool
	Coverage       bool
	DynamicRuntime bool // MSVC runtime library selection

	// BuildDir is the explicit output root. It must be non-empty unless
	// LegacyPath selects the synthesized naming scheme instead.
	BuildDir   string
	LegacyPath bool

	// CXX and CC are the configured invocations before any system
	// override. Empty selects the platform defaults c++ and cc.
	CXX string
	CC  string

	// ConfigFile overrides the project file path. Vars adds user-defined
	// option declarations on top of the built-in ones.
	ConfigFile string
	Vars       []vars.Decl

	// Env, Tester and GOOS exist so resolution is a pure function of its
	// inputs; leave them zero outside of tests.
	Env    *toolchain.EnvSnapshot
	Tester probe.CompileTester
	GOOS   string

	// Engine, when set, receives the resolved flags and accumulated state
	// before Configure returns.
	Engine Engine
}

// Configure resolves the toolchain identity, derives flags and the output
// root, and returns a ready configuration handle. Any fatal condition
// aborts with an error wrapping ErrFatalConfig and no handle.
func Configure(opts Options) (*Env, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	var snap toolchain.EnvSnapshot
	if opts.Env != nil {
		snap = *opts.Env
	} else {
		snap = toolchain.Snapshot()
	}

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	file, err := vars.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalConfig, err)
	}
	if err := file.CheckVersion(Version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalConfig, err)
	}

	debugDefault := opts.DefaultDebug
	if snap.DebugDefault != "" {
		v, err := strconv.ParseBool(snap.DebugDefault)
		if err != nil {
			log.Warnf("ignoring unparsable ZBUILD_DEBUG value %q", snap.DebugDefault)
		} else {
			debugDefault = v
		}
	}

	decls := append([]vars.Decl{
		{Name: "debug", Help: "Build with the debug flag and reduced optimization.", Kind: vars.Bool, Default: debugDefault},
		{Name: "systemCompiler", Help: "Whether to use CXX/CC from the environment variables.", Kind: vars.Bool, Default: opts.SystemCompiler},
	}, opts.Vars...)
	set, err := vars.NewSet(decls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalConfig, err)
	}
	if file != nil {
		if err := set.Apply(file.Options); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFatalConfig, err)
		}
	}

	cxx, ccInvocation := opts.CXX, opts.CC
	if cxx == "" {
		cxx = "c++"
	}
	if ccInvocation == "" {
		ccInvocation = "cc"
	}

	res := toolchain.Resolve(cxx, ccInvocation, set.Bool("systemCompiler"), snap)
	log.Infof("detected compiler: %s", res.Identity.Compiler)

	if goos == "windows" && res.Identity.Compiler != "msvc" && res.Identity.Compiler != "clang-cl" {
		// MinGW mode switches the platform defaults to a GCC-shaped
		// toolchain but keeps the resolved CXX/CC invocations, so the
		// identity already on hand stays valid for flag derivation.
		log.Warn("forcing MinGW mode")
	}

	standard := opts.Standard
	if standard == "" && file != nil {
		standard = file.Standard
	}
	if standard == "" {
		standard = "c++17"
	}

	mode := toolchain.BuildMode{
		Debug:          set.Bool("debug"),
		Coverage:       opts.Coverage,
		Sanitizers:     opts.Sanitizers,
		Standard:       standard,
		DynamicRuntime: opts.DynamicRuntime,
	}

	// An explicit directory always wins; the legacy synthesized scheme is
	// only consulted when none was supplied.
	buildDir := opts.BuildDir
	if buildDir == "" && file != nil {
		buildDir = file.BuildDir
	}
	if buildDir == "" {
		if !opts.LegacyPath {
			return nil, fmt.Errorf("%w: build output directory must not be empty", ErrFatalConfig)
		}
		buildDir = toolchain.OutputDir(res.Identity, mode.Debug, goos)
	}

	tester := opts.Tester
	if tester == nil {
		compiler := cc.New(res.CXX, res.Identity.Style)
		compiler.Setenv("TERM", snap.Term)
		if goos == "windows" {
			compiler.Setenv("TMP", snap.Tmp)
		}
		tester = compiler
	}

	env := &Env{
		id:       res.Identity,
		mode:     mode,
		flags:    toolchain.Derive(res.Identity, mode, goos),
		cxx:      res.CXX,
		cc:       res.CC,
		goos:     goos,
		buildDir: buildDir,
		vars:     set,
		tc:       tester,
	}
	if opts.Engine != nil {
		env.Apply(opts.Engine)
	}
	return env, nil
}
