package internal

import (
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zbuild",
	Short: "zbuild resolves C/C++ toolchain configuration",
	Long: `zbuild identifies the configured C/C++ toolchain, derives compiler and
linker flags for it, and probes the toolchain for optional feature support.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
