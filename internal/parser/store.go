package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sdko-org/loganalyzer/internal/models"
)

const readBufferSize = 64 * 1024

// Store holds every record parsed from one input, in file order. It is not
// modified after ParseReader returns.
type Store struct {
	Records []models.LogRecord
	Lines   int
	Dropped int
}

// Len returns the number of parsed records.
func (s *Store) Len() int {
	return len(s.Records)
}

// ParseFile opens path, decompressing it when the extension asks for it, and
// parses it into a Store.
func ParseFile(path string) (*Store, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	store, err := ParseReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return store, nil
}

// ParseReader parses r line by line. Lines that do not match are counted in
// Dropped and otherwise ignored. Lines of any length are accepted.
func ParseReader(r io.Reader) (*Store, error) {
	store := &Store{}
	br := bufio.NewReaderSize(r, readBufferSize)

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if line == "" && err == io.EOF {
			break
		}

		store.Lines++
		if rec, ok := ParseLine(strings.TrimRight(line, "\r\n")); ok {
			store.Records = append(store.Records, rec)
		} else {
			store.Dropped++
		}

		if err == io.EOF {
			break
		}
	}

	return store, nil
}
