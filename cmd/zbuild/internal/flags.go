package internal

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zbuildtool/zbuild/internal/toolchain"
)

var flagsOpts struct {
	compiler string
	release  bool
	standard string
}

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Print the derived flags for a compiler without probing it",
	RunE:  runFlags,
}

func init() {
	f := flagsCmd.Flags()
	f.StringVar(&flagsOpts.compiler, "cxx", "c++", "C++ compiler invocation to derive flags for")
	f.BoolVar(&flagsOpts.release, "release", false, "Derive release flags instead of debug")
	f.StringVar(&flagsOpts.standard, "std", "c++17", "Target language standard")
	rootCmd.AddCommand(flagsCmd)
}

func runFlags(cmd *cobra.Command, args []string) error {
	res := toolchain.Resolve(flagsOpts.compiler, "cc", false, toolchain.EnvSnapshot{})
	mode := toolchain.BuildMode{
		Debug:    !flagsOpts.release,
		Standard: flagsOpts.standard,
	}
	fs := toolchain.Derive(res.Identity, mode, runtime.GOOS)
	fmt.Printf("compiler:      %s (%s arguments)\n", res.Identity.Compiler, res.Identity.Style)
	fmt.Printf("compile flags: %s\n", strings.Join(fs.Compile, " "))
	fmt.Printf("link flags:    %s\n", strings.Join(fs.Link, " "))
	fmt.Printf("output dir:    %s\n", toolchain.OutputDir(res.Identity, mode.Debug, runtime.GOOS))
	return nil
}
