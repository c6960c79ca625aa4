package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/pkg/definition"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml>",
	Short: "Check a definition for consistency",
	Long:  `Parses a definition file and reports duplicate events, undeclared states, and cyclic parent links.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Definition is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	def, err := definition.Load(path)
	if err != nil {
		return err
	}

	// Guard and hook names resolve only at build time against a host
	// registry, so structural checks run without one.
	return def.Validate(nil)
}
