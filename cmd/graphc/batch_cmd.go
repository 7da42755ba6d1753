// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/graphc/compile"
)

// manifestEntry is one {input, entry, output} triple of a batch manifest.
type manifestEntry struct {
	Input  string `yaml:"input"`
	Entry  string `yaml:"entry"`
	Output string `yaml:"output"`
}

type manifest struct {
	Jobs []manifestEntry `yaml:"jobs"`
}

func newBatchCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compile every entry in a YAML manifest concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			raw, err := loadBytes(ctx, manifestPath)
			if err != nil {
				return err
			}
			var m manifest
			if err := yaml.Unmarshal(raw, &m); err != nil {
				return err
			}

			// compile.Compile is reentrant and holds no state across
			// calls (spec.md §5), so every manifest entry is safe to
			// compile on its own goroutine; errgroup collects the first
			// failure and cancels the rest.
			g, gctx := errgroup.WithContext(ctx)
			for _, job := range m.Jobs {
				job := job
				g.Go(func() error {
					return runBatchJob(gctx, job)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path or URI to a YAML batch manifest (required)")
	cmd.MarkFlagRequired("manifest")
	return cmd
}

func runBatchJob(ctx context.Context, job manifestEntry) error {
	doc, err := loadDocument(ctx, job.Input)
	if err != nil {
		return err
	}
	entry := job.Entry
	if entry == "" {
		entry = doc.EntryPointID
	}
	opts := compile.DefaultOptions()
	result, err := compile.Compile(doc, entry, &opts)
	if err != nil {
		return err
	}
	log.Printf("compiled %s (entry %s) -> %s (%d bytes, %d resources)",
		job.Input, entry, job.Output, len(result.Code), len(result.ResourceIDs))
	return os.WriteFile(job.Output, []byte(result.Code), 0o644)
}
