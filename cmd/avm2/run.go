package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kristofer/avm2/pkg/avmrt"
	"github.com/kristofer/avm2/pkg/vm"
)

var (
	runMethod string
	runArgs   []string
)

// runCmd implements `avm2 run <file> --method <qname> --arg ...`: load
// an image, run every script's init (spec.md §4.4.5's load-time
// binding), construct an instance of the method's owning class, invoke
// the named method, and print the result.
var runCmd = &cobra.Command{
	Use:   "run <file.abc|file.swf>",
	Short: "Run an ABC image and optionally invoke one of its methods",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := loadImage(args[0])
		if err != nil {
			return err
		}
		v, err := vm.NewVM(img)
		if err != nil {
			return fmt.Errorf("building vm: %w", err)
		}
		if _, err := v.EntryPoint(); err != nil {
			return fmt.Errorf("running scripts: %w", err)
		}
		if runMethod == "" {
			fmt.Println("all scripts initialized")
			return nil
		}

		classQName, memberName, ok := splitQName(runMethod)
		if !ok {
			return fmt.Errorf("--method %q must be a qualified Class.method name", runMethod)
		}
		classIx, ok := v.LookupClass(classQName)
		if !ok {
			return fmt.Errorf("class %q not found", classQName)
		}
		receiver, err := v.NewInstance(classIx, nil)
		if err != nil {
			return fmt.Errorf("constructing %s: %w", classQName, err)
		}
		methodIx, ok := v.LookupMethod(classQName + "." + memberName)
		if !ok {
			return fmt.Errorf("method %q not found on %s", memberName, classQName)
		}

		callArgs := make([]avmrt.Value, len(runArgs))
		for i, a := range runArgs {
			callArgs[i] = argValue(a)
		}
		result, err := v.CallMethod(methodIx, receiver, callArgs)
		if err != nil {
			return fmt.Errorf("calling %s: %w", runMethod, err)
		}
		fmt.Println(result.ToString())
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runMethod, "method", "", "qualified Class.method name to invoke after load")
	runCmd.Flags().StringArrayVar(&runArgs, "arg", nil, "argument to pass to --method, repeatable")
}

// splitQName splits a dotted qname into its class-qualified prefix and
// trailing member name: "flash.utils.Dictionary.get" -> ("flash.utils.Dictionary", "get").
func splitQName(qname string) (classQName, member string, ok bool) {
	ix := strings.LastIndex(qname, ".")
	if ix < 0 {
		return "", "", false
	}
	return qname[:ix], qname[ix+1:], true
}

// argValue converts a CLI argument string into the Value a script
// would see: a number if it parses as one, a string otherwise.
func argValue(s string) avmrt.Value {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return avmrt.Number(n)
	}
	return avmrt.Str(s)
}
