// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/codec"
)

// Envelope is one journal entry: the event kind, the wall-clock write
// time, and the deterministic CBOR encoding of the event itself. Data
// stays raw on read; callers decode it against the kind.
type Envelope struct {
	Kind string          `cbor:"1,keyasint"`
	At   int64           `cbor:"2,keyasint"`
	Data cbor.RawMessage `cbor:"3,keyasint"`
}

// frameHeaderSize is tag (1) + uncompressed length (4) + payload
// length (4).
const frameHeaderSize = 9

// maxFrameSize bounds a single frame on read. Ledger events are tiny;
// anything near this limit means a corrupt or foreign file.
const maxFrameSize = 1 << 20

// Writer appends compressed event frames to an underlying stream.
// Safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	tag    CompressionTag
	now    func() time.Time
}

// NewWriter creates a journal writer over an arbitrary stream.
func NewWriter(out io.Writer, tag CompressionTag) *Writer {
	return &Writer{out: out, tag: tag, now: time.Now}
}

// Create opens (or creates, append-mode) the journal file at path.
func Create(path string, tag CompressionTag) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	writer := NewWriter(file, tag)
	writer.closer = file
	return writer, nil
}

// Append writes one event frame. The event is encoded with
// deterministic CBOR, compressed with the writer's tag (falling back
// to an uncompressed frame when compression does not shrink it), and
// length-prefixed so a reader can walk the file without an index.
func (w *Writer) Append(kind string, event any) error {
	data, err := codec.Marshal(event)
	if err != nil {
		return fmt.Errorf("journal: encoding %s event: %w", kind, err)
	}
	envelope, err := codec.Marshal(Envelope{Kind: kind, At: w.now().UnixNano(), Data: data})
	if err != nil {
		return fmt.Errorf("journal: encoding envelope: %w", err)
	}

	tag := w.tag
	payload, err := compress(envelope, tag)
	if errors.Is(err, errIncompressible) {
		tag, payload = CompressionNone, envelope
	} else if err != nil {
		return err
	}

	var header [frameHeaderSize]byte
	header[0] = byte(tag)
	binary.BigEndian.PutUint32(header[1:5], uint32(len(envelope)))
	binary.BigEndian.PutUint32(header[5:9], uint32(len(payload)))

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(header[:]); err != nil {
		return fmt.Errorf("journal: writing frame header: %w", err)
	}
	if _, err := w.out.Write(payload); err != nil {
		return fmt.Errorf("journal: writing frame payload: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Reader walks a journal stream frame by frame.
type Reader struct {
	in io.Reader
}

// NewReader creates a reader over a journal stream.
func NewReader(in io.Reader) *Reader {
	return &Reader{in: in}
}

// Open opens the journal file at path for reading. The caller closes
// the returned file.
func Open(path string) (*Reader, *os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("journal: opening %s: %w", path, err)
	}
	return NewReader(file), file, nil
}

// Next returns the next envelope, or io.EOF at the end of the stream.
func (r *Reader) Next() (*Envelope, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r.in, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("journal: reading frame header: %w", err)
	}

	tag := CompressionTag(header[0])
	uncompressedSize := int(binary.BigEndian.Uint32(header[1:5]))
	payloadSize := int(binary.BigEndian.Uint32(header[5:9]))
	if uncompressedSize > maxFrameSize || payloadSize > maxFrameSize {
		return nil, fmt.Errorf("journal: frame size %d/%d exceeds limit", uncompressedSize, payloadSize)
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r.in, payload); err != nil {
		return nil, fmt.Errorf("journal: reading frame payload: %w", err)
	}

	envelope, err := decompress(payload, tag, uncompressedSize)
	if err != nil {
		return nil, err
	}

	var out Envelope
	if err := codec.Unmarshal(envelope, &out); err != nil {
		return nil, fmt.Errorf("journal: decoding envelope: %w", err)
	}
	return &out, nil
}
