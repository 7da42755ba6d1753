// Command graphc compiles a node-graph IR document into standalone C99
// source text.
//
// Usage:
//
//	graphc compile --entry main shader_graph.json
//	graphc compile --entry main -o out.c shader_graph.json
//	graphc batch --manifest jobs.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "graphc",
		Short:         "Compile a node-graph IR document to C99",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newBatchCmd())
	return cmd
}
