// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/gogpu/graphc/compile"
)

func newCompileCmd() *cobra.Command {
	var (
		entry   string
		output  string
		dumpIR  bool
		noHdr   bool
		hdrPath string
	)

	cmd := &cobra.Command{
		Use:   "compile <ir-document>",
		Short: "Compile a single IR document to C99",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			doc, err := loadDocument(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}

			if entry == "" {
				entry = doc.EntryPointID
			}

			if dumpIR {
				log.Printf("parsed document:\n%s", spew.Sdump(doc))
			}

			opts := compile.DefaultOptions()
			opts.IncludeHarnessHeader = !noHdr
			if hdrPath != "" {
				opts.HarnessHeader = hdrPath
			}

			result, err := compile.Compile(doc, entry, &opts)
			if err != nil {
				return err
			}

			if dumpIR {
				log.Printf("resource binding order: %v", result.ResourceIDs)
				log.Printf("shader refs: %s", spew.Sdump(result.ShaderRefs))
			}

			if output == "" {
				_, err = fmt.Fprint(os.Stdout, result.Code)
				return err
			}
			log.Printf("writing %d bytes to %s", len(result.Code), output)
			return os.WriteFile(output, []byte(result.Code), 0o644)
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "entry function id (default: the document's entry_point_id)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&dumpIR, "dump-ir", false, "pretty-print the parsed IR and compile result for diagnostics")
	cmd.Flags().BoolVar(&noHdr, "no-harness-header", false, "omit the #include for the harness ABI header")
	cmd.Flags().StringVar(&hdrPath, "harness-header", "", "override the harness ABI header include path")
	return cmd
}
