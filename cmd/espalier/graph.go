package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/definition"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition.yaml>",
	Short: "Export the machine graph visualization",
	Long:  `Builds the machine from a definition file and outputs a Graphviz DOT digraph of its states, transitions, and hooks.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		def, err := definition.Load(args[0])
		if err != nil {
			fmt.Printf("Error loading definition: %v\n", err)
			os.Exit(1)
		}

		// Lenient build: guard and hook names only label graph edges here.
		machine, err := def.Build(nil, definition.Lenient())
		if err != nil {
			fmt.Printf("Error building machine: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(espalier.Graph(machine))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
