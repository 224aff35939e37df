package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zbuildtool/zbuild/zenv"
)

var probeOpts struct {
	cxx string
	std string
}

var probeCmd = &cobra.Command{
	Use:   "probe [stdlib|filesystem]",
	Short: "Run a capability probe against the live toolchain",
	Long: `Probe compiles small discriminating snippets against the configured
compiler. "stdlib" reports which standard-library implementation the
toolchain uses; "filesystem" additionally reports whether the standard
filesystem library is usable and whether it needs an explicit link.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"stdlib", "filesystem"},
	RunE:      runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeOpts.cxx, "cxx", "", "C++ compiler invocation (default c++)")
	probeCmd.Flags().StringVar(&probeOpts.std, "std", "", "Target language standard")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	env, err := zenv.Configure(zenv.Options{
		DefaultDebug:   true,
		SystemCompiler: true,
		Standard:       probeOpts.std,
		CXX:            probeOpts.cxx,
		LegacyPath:     true,
	})
	if err != nil {
		return err
	}

	s := env.Configure()
	switch args[0] {
	case "stdlib":
		kind, err := s.DetectStdlib()
		if err != nil {
			return err
		}
		fmt.Printf("stdlib: %s\n", kind)
	case "filesystem":
		fs, err := s.DetectFilesystem()
		if err != nil {
			return err
		}
		kind, _ := env.Stdlib()
		fmt.Printf("stdlib:        %s\n", kind)
		fmt.Printf("supported:     %v\n", fs.Supported)
		fmt.Printf("explicit link: %v\n", fs.RequiresExplicitLink)
	}
	return nil
}
