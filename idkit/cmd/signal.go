package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	idkit "github.com/worldcoin/idkit-go"
)

var signalCmd = &cobra.Command{
	Use:   "signal <value>",
	Short: "Print the encoding of a signal as sent to the World App",
	Long: `Print the encoding of a signal as sent to the World App: the Keccak-256 hash of the
value, shifted right by 8 bits so that it fits the field, as 0x-prefixed hex.`,
	Example: `idkit signal 0x12312
idkit signal ""`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), idkit.EncodeSignal(args[0]))
	},
}

func init() {
	RootCmd.AddCommand(signalCmd)
}
