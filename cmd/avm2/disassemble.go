package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kristofer/avm2/pkg/vm"
)

var disassembleMethod string

// disassembleCmd implements `avm2 disassemble <file> --method <qname>`:
// decode one method body's instructions and print them one per line,
// reusing Opcode's String() method the way the teacher's own
// disassemble subcommand reuses bytecode.Opcode.String().
var disassembleCmd = &cobra.Command{
	Use:   "disassemble <file.abc|file.swf>",
	Short: "Disassemble one method body's instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if disassembleMethod == "" {
			return fmt.Errorf("--method <Class.method> is required")
		}
		img, err := loadImage(args[0])
		if err != nil {
			return err
		}
		v, err := vm.NewVM(img)
		if err != nil {
			return fmt.Errorf("building vm: %w", err)
		}
		methodIx, ok := v.LookupMethod(disassembleMethod)
		if !ok {
			return fmt.Errorf("method %q not found", disassembleMethod)
		}
		m := img.Methods[methodIx]
		if m.BodyIx < 0 || m.BodyIx >= len(img.MethodBodies) {
			return fmt.Errorf("method %q has no body", disassembleMethod)
		}
		body := img.MethodBodies[m.BodyIx]

		pc := 0
		for pc < len(body.Code) {
			inst, next, err := vm.DecodeInstruction(body.Code, pc)
			if err != nil {
				return fmt.Errorf("decoding at pc %d: %w", pc, err)
			}
			fmt.Printf("%4d  %-16s %v\n", pc, inst.Op, inst.Args)
			pc = next
		}
		return nil
	},
}

func init() {
	disassembleCmd.Flags().StringVar(&disassembleMethod, "method", "", "qualified Class.method name to disassemble")
}
