package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	idkit "github.com/worldcoin/idkit-go"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "idkit",
	Short: "World ID toolkit",
	Long:  `Request and inspect proofs of personhood from the World App`,
}

// Execute adds all child commands to the root command sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print idkit version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "idkit")
			fmt.Fprintln(out, "Version: ", idkit.Version)
			fmt.Fprintln(out, "OS/Arg:  ", runtime.GOOS+"/"+runtime.GOARCH)
		},
	})

	cobra.AddTemplateFunc("insertHeaders", insertHeaders)
}

func die(message string, err error) {
	var m string
	if message != "" {
		m = message + ": "
	}
	if err != nil {
		m = m + err.Error()
	}
	fmt.Fprintln(os.Stderr, m)
	os.Exit(1)
}
