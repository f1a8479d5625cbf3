package wikidata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// dumpPrefix is the "[\n" that opens a JSON array dump.
const dumpPrefix = 2

// DumpReader yields the entity lines of a Wikidata JSON dump, one per call to
// Next. It reads the stream once and cannot be rewound.
type DumpReader struct {
	r       *bufio.Reader
	started bool
	line    int
	closers []io.Closer
}

// NewDumpReader reads a bzip2-compressed dump from r.
func NewDumpReader(r io.Reader) (*DumpReader, error) {
	zr, err := bzip2.NewReader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bzip2 stream: %w", err)
	}
	d := NewLineReader(zr)
	d.closers = append(d.closers, zr)
	return d, nil
}

// NewLineReader reads an uncompressed dump from r.
func NewLineReader(r io.Reader) *DumpReader {
	return &DumpReader{r: bufio.NewReaderSize(r, 1<<20)}
}

// OpenDump opens a dump file. Files ending in .bz2 are decompressed.
func OpenDump(path string) (*DumpReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}

	var d *DumpReader
	if strings.HasSuffix(path, ".bz2") {
		d, err = NewDumpReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
	} else {
		d = NewLineReader(f)
	}
	d.closers = append(d.closers, f)
	return d, nil
}

// Next returns the next line with trailing commas and newlines removed. It
// returns io.EOF once the stream is exhausted.
func (d *DumpReader) Next() (string, error) {
	if !d.started {
		d.started = true
		if _, err := d.r.Discard(dumpPrefix); err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", fmt.Errorf("reading dump header: %w", err)
		}
	}

	line, err := d.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading dump line %d: %w", d.line+1, err)
		}
		if line == "" {
			return "", io.EOF
		}
	}

	d.line++
	return strings.TrimRight(line, ",\n"), nil
}

// Line is the 1-based number of the last line returned by Next, counted after
// the array header.
func (d *DumpReader) Line() int {
	return d.line
}

// Close releases the decompressor and, when the reader came from OpenDump,
// the underlying file.
func (d *DumpReader) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
