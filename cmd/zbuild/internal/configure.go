package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zbuildtool/zbuild/zenv"
)

var configureOpts struct {
	debug          bool
	release        bool
	system         bool
	standard       string
	sanitizers     bool
	coverage       bool
	dynamicRuntime bool
	buildDir       string
	legacyPath     bool
	cxx            string
	cc             string
	filesystem     bool
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Resolve the toolchain and print the derived configuration",
	Long: `Configure resolves the compiler identity and argument dialect, derives the
compile and link flags for the selected mode, and prints everything a build
engine would receive.`,
	RunE: runConfigure,
}

func init() {
	f := configureCmd.Flags()
	f.BoolVar(&configureOpts.debug, "debug", true, "Build with the debug flag and reduced optimization")
	f.BoolVar(&configureOpts.release, "release", false, "Shorthand for --debug=false")
	f.BoolVar(&configureOpts.system, "system-compiler", true, "Honor CXX/CC from the environment variables")
	f.StringVar(&configureOpts.standard, "std", "", "Target language standard (default from zbuild.toml, else c++17)")
	f.BoolVar(&configureOpts.sanitizers, "sanitizers", false, "Enable the undefined-behavior sanitizer in debug builds")
	f.BoolVar(&configureOpts.coverage, "coverage", false, "Enable coverage instrumentation in debug builds")
	f.BoolVar(&configureOpts.dynamicRuntime, "dynamic-runtime", false, "Link the dynamic MSVC runtime library")
	f.StringVar(&configureOpts.buildDir, "build-dir", "", "Explicit build output root")
	f.BoolVar(&configureOpts.legacyPath, "legacy-path", false, "Synthesize the build output root from the toolchain identity")
	f.StringVar(&configureOpts.cxx, "cxx", "", "C++ compiler invocation (default c++)")
	f.StringVar(&configureOpts.cc, "cc", "", "C compiler invocation (default cc)")
	f.BoolVar(&configureOpts.filesystem, "filesystem", false, "Probe for and configure standard filesystem support")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	env, err := zenv.Configure(zenv.Options{
		DefaultDebug:   configureOpts.debug && !configureOpts.release,
		SystemCompiler: configureOpts.system,
		Standard:       configureOpts.standard,
		Sanitizers:     configureOpts.sanitizers,
		Coverage:       configureOpts.coverage,
		DynamicRuntime: configureOpts.dynamicRuntime,
		BuildDir:       configureOpts.buildDir,
		LegacyPath:     configureOpts.legacyPath || configureOpts.buildDir == "",
		CXX:            configureOpts.cxx,
		CC:             configureOpts.cc,
	})
	if err != nil {
		return err
	}

	if configureOpts.filesystem {
		if err := env.ConfigureFilesystem(); err != nil {
			return fmt.Errorf("configure filesystem: %w", err)
		}
	}

	id := env.Identity()
	flags := env.Flags()
	fmt.Printf("compiler:      %s (%s arguments)\n", id.Compiler, id.Style)
	fmt.Printf("cxx:           %s\n", env.CXX())
	fmt.Printf("cc:            %s\n", env.CC())
	fmt.Printf("build dir:     %s\n", env.BuildDir())
	fmt.Printf("compile flags: %s\n", strings.Join(flags.Compile, " "))
	fmt.Printf("link flags:    %s\n", strings.Join(flags.Link, " "))
	if libs := env.Libraries(); len(libs) > 0 {
		fmt.Printf("libraries:     %s\n", strings.Join(libs, " "))
	}
	return nil
}
