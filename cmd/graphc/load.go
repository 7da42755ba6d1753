// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"

	"github.com/viant/afs"

	"github.com/gogpu/graphc/ir"
)

// loadDocument reads an IR document from a local path or any URI the
// abstract filesystem understands (s3://, gs://, http(s)://, ...),
// keeping resource loading - explicitly out of the compile package's
// scope per spec.md §1 - confined to this CLI.
func loadDocument(ctx context.Context, location string) (*ir.Document, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, err
	}
	return ir.Decode(data)
}

// loadBytes reads raw bytes from a local path or URI, used for the batch
// manifest file.
func loadBytes(ctx context.Context, location string) ([]byte, error) {
	fs := afs.New()
	return fs.DownloadWithURL(ctx, location)
}
