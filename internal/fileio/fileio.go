// Package fileio opens pipeline inputs and outputs, transparently handling
// gzip and zstd compression. The path "-" stands for stdin or stdout.
package fileio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stdio is the path that selects stdin or stdout.
const Stdio = "-"

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open opens path for reading. Compressed content is detected by its magic
// bytes, so a .jsonl.gz dump and a renamed one both decode.
func Open(path string) (io.ReadCloser, error) {
	var f io.ReadCloser
	if path == Stdio {
		f = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		f = file
	}

	br := bufio.NewReaderSize(f, 1<<16)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, f.Close}}, nil
	default:
		return &readCloser{Reader: br, closers: []func() error{f.Close}}, nil
	}
}

// Create creates path for writing, compressing when the name ends in .gz
// or .zst. Missing parent directories are created.
func Create(path string) (io.WriteCloser, error) {
	if path == Stdio {
		return nopWriteCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriterSize(f, 1<<16)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw := gzip.NewWriter(bw)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, bw.Flush, f.Close}}, nil
	case ".zst":
		zw, err := zstd.NewWriter(bw)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, bw.Flush, f.Close}}, nil
	default:
		return &writeCloser{Writer: bw, closers: []func() error{bw.Flush, f.Close}}, nil
	}
}

// readCloser closes its layers innermost first.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

// writeCloser flushes and closes its layers innermost first. The first error
// wins; later layers are still closed so the file handle is released.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	return closeAll(w.closers)
}

func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
