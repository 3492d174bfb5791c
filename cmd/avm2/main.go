// Command avm2 loads ActionScript Bytecode (ABC) — whether bare or
// embedded in a SWF container — and can report its structure,
// disassemble one of its method bodies, or run it on the interpreter
// in pkg/vm.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "avm2",
	Short: "Decode, disassemble, and run AVM2 ActionScript Bytecode",
}

func main() {
	rootCmd.AddCommand(decodeCmd, runCmd, disassembleCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
