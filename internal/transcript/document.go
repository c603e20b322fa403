// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// maxLineSize bounds a single record; tool outputs can be large.
const maxLineSize = 10 * 1024 * 1024

// errLineTooLong reports a record over maxLineSize. The record is skipped.
var errLineTooLong = errors.New("record exceeds maximum size")

// Document holds every node of one transcript in file order. It is mutated
// only on the event loop.
type Document struct {
	Path   string
	roots  []*Node
	offset int64
}

// NewDocument creates an empty document for path.
func NewDocument(path string) *Document {
	return &Document{Path: path}
}

// Load reads the whole transcript at path.
func Load(path string, logger *zap.Logger) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	doc := NewDocument(path)
	nodes, consumed, err := ReadRecords(f, logger)
	if err != nil {
		return nil, err
	}
	doc.Append(nodes...)
	doc.offset = consumed
	return doc, nil
}

// ReadRecords parses complete lines from r. A trailing line without a newline
// is left unread so a half-written record is picked up on the next read. It
// returns the parsed nodes and the number of bytes consumed.
func ReadRecords(r io.Reader, logger *zap.Logger) ([]*Node, int64, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	br := bufio.NewReaderSize(r, 64*1024)
	var (
		nodes    []*Node
		consumed int64
	)
	for {
		line, n, err := readLine(br)
		if err == io.EOF {
			return nodes, consumed, nil
		}
		if errors.Is(err, errLineTooLong) {
			consumed += n
			logger.Warn("skipping oversized record",
				zap.Int64("bytes", n),
				zap.Int("limit", maxLineSize))
			continue
		}
		if err != nil {
			return nodes, consumed, fmt.Errorf("read transcript: %w", err)
		}
		consumed += n

		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		node, perr := ParseLine(trimmed)
		if perr != nil {
			logger.Debug("skipping malformed record", zap.Error(perr))
			continue
		}
		nodes = append(nodes, node)
	}
}

// readLine returns one newline-terminated line and its length in bytes, or
// io.EOF when only a partial line (or nothing) remains. A line longer than
// maxLineSize is read to its newline without being kept, and reported as
// errLineTooLong with its full length.
func readLine(br *bufio.Reader) ([]byte, int64, error) {
	var (
		buf  []byte
		n    int64
		over bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		n += int64(len(chunk))
		if !over {
			buf = append(buf, chunk...)
			if len(buf) > maxLineSize {
				over, buf = true, nil
			}
		}
		switch err {
		case nil:
			if over {
				return nil, n, errLineTooLong
			}
			return buf, n, nil
		case bufio.ErrBufferFull:
			continue
		default:
			return nil, n, err
		}
	}
}

// Append adds nodes at the end of the document.
func (d *Document) Append(nodes ...*Node) {
	d.roots = append(d.roots, nodes...)
}

// Roots returns the top-level nodes.
func (d *Document) Roots() []*Node {
	return d.roots
}

// Offset returns the number of bytes consumed from the file.
func (d *Document) Offset() int64 {
	return d.offset
}

// SetOffset records the number of bytes consumed from the file.
func (d *Document) SetOffset(off int64) {
	d.offset = off
}

// Select returns every message node in document order.
func (d *Document) Select() []*Node {
	var out []*Node
	for _, n := range d.roots {
		out = append(out, n.Messages()...)
	}
	return out
}
