// idkit requests proofs of personhood from the World App on the command line.
package main

import "github.com/worldcoin/idkit-go/idkit/cmd"

func main() {
	cmd.Execute()
}
