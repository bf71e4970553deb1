// Package tempstream spills the internal/external key streams produced by
// the behaviour labelling pass to a temporary file, so that the labelled
// walk does not keep its records in memory while it runs (the replay side
// still deduplicates them into an in-memory key set). Each record is a
// little-endian uint64 node index, a little-endian uint32 path length (a
// plain fixed-width field, not gamma-coded), one behaviour byte, and then
// the path bits as ceil(length/8) packed bytes. Cleanup is guaranteed on
// both the success and error path, grounded on the retry-loop resource discipline in the thesis's
// mmph/bucket_with_approx_trie construction loop.
package tempstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Record is one labelled (node, path) -> behaviour triple as it is written
// to and read back from the spill file.
type Record struct {
	NodeIndex uint64
	PathLen   uint32
	PathBits  []byte
	Behaviour byte
}

// Writer appends Records to a temp file in binary form.
type Writer struct {
	file *os.File
	buf  *bufio.Writer
	n    int
}

// NewWriter creates a fresh temp file in dir (os.TempDir() if dir is empty)
// with the given name prefix.
func NewWriter(dir, prefix string) (*Writer, error) {
	f, err := os.CreateTemp(dir, prefix+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("tempstream: creating temp file: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// Write appends r to the stream.
func (w *Writer) Write(r Record) error {
	var hdr [13]byte
	binary.LittleEndian.PutUint64(hdr[0:8], r.NodeIndex)
	binary.LittleEndian.PutUint32(hdr[8:12], r.PathLen)
	hdr[12] = r.Behaviour
	if _, err := w.buf.Write(hdr[:]); err != nil {
		return err
	}
	numBytes := (int(r.PathLen) + 7) / 8
	if numBytes > 0 {
		if _, err := w.buf.Write(r.PathBits[:numBytes]); err != nil {
			return err
		}
	}
	w.n++
	return nil
}

// Len returns the number of records written so far.
func (w *Writer) Len() int {
	return w.n
}

// Close flushes buffered writes. It does not delete the file; call
// OpenReader on Path to replay it, or Cleanup to discard it.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// Path returns the underlying file's path.
func (w *Writer) Path() string {
	return w.file.Name()
}

// Cleanup removes the underlying temp file. Safe to call multiple times and
// intended to run under defer regardless of the construction outcome.
func (w *Writer) Cleanup() {
	_ = w.file.Close()
	_ = os.Remove(w.file.Name())
}

// Reader replays Records previously written by a Writer.
type Reader struct {
	file *os.File
	buf  *bufio.Reader
}

// OpenReader rewinds the writer's file and returns a read-only Reader over
// it. The caller must have called Writer.Close first.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tempstream: opening %s: %w", path, err)
	}
	return &Reader{file: f, buf: bufio.NewReader(f)}, nil
}

// Next reads the next Record, returning io.EOF when exhausted.
func (r *Reader) Next() (Record, error) {
	var hdr [13]byte
	if _, err := io.ReadFull(r.buf, hdr[:]); err != nil {
		return Record{}, err
	}
	rec := Record{
		NodeIndex: binary.LittleEndian.Uint64(hdr[0:8]),
		PathLen:   binary.LittleEndian.Uint32(hdr[8:12]),
		Behaviour: hdr[12],
	}
	numBytes := (int(rec.PathLen) + 7) / 8
	if numBytes > 0 {
		rec.PathBits = make([]byte, numBytes)
		if _, err := io.ReadFull(r.buf, rec.PathBits); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

// Close closes and removes the underlying temp file.
func (r *Reader) Close() error {
	path := r.file.Name()
	if err := r.file.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}
