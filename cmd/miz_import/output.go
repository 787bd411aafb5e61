package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/optics-dcs/miz-import/internal/parser"
	"github.com/optics-dcs/miz-import/internal/tree"
)

// Output compressions
const (
	CompressNone = "none"
	CompressGzip = "gzip"
	CompressZstd = "zstd"
)

func parseCompression(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", CompressNone:
		return CompressNone, nil
	case CompressGzip, "gz":
		return CompressGzip, nil
	case CompressZstd, "zst":
		return CompressZstd, nil
	}
	return "", fmt.Errorf("unknown compression %q (want none, gzip or zstd)", s)
}

// writeCompressed writes data to w, compressed as requested.
func writeCompressed(w io.Writer, data []byte, compression string) error {
	var enc io.WriteCloser
	switch compression {
	case CompressNone:
		_, err := w.Write(data)
		return err
	case CompressGzip:
		enc = gzip.NewWriter(w)
	case CompressZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		enc = zw
	default:
		return fmt.Errorf("unknown compression %q", compression)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return fmt.Errorf("compressing output: %w", err)
	}
	return enc.Close()
}

// writeOutput writes data to path, or to out when path is empty or "-".
func writeOutput(out io.Writer, path string, data []byte, compression string) error {
	if path == "" || path == "-" {
		return writeCompressed(out, data, compression)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writeCompressed(f, data, compression); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// buildTree loads the archive at path and projects it. The live scheme keeps only groups
// with human seats.
func buildTree(ctx context.Context, p *parser.Parser, path string, live bool) (*tree.Node, error) {
	if !live {
		m, err := p.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		return tree.ArchiveBuilder{}.Build(m), nil
	}

	doc, err := p.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	view, err := p.LiveView(doc)
	if err != nil {
		return nil, err
	}
	return tree.LiveBuilder{}.Build(view), nil
}

// splitIDs flattens repeated and comma separated id arguments, dropping blanks.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// mapping is one "name=value" argument.
type mapping struct {
	Name  string
	Value string
}

func parseMappings(args []string) ([]mapping, error) {
	out := make([]mapping, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			return nil, fmt.Errorf("invalid mapping %q (want name=value)", arg)
		}
		out = append(out, mapping{Name: name, Value: value})
	}
	return out, nil
}
