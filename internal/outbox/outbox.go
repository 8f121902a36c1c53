// Package outbox is a durable queue of answer submissions. The client appends
// a submission before sending it and commits it once the service has
// acknowledged it; anything left uncommitted is delivered again on the next
// start.
package outbox

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tinytelemetry/mockview/internal/atomicfile"
	"github.com/tinytelemetry/mockview/internal/model"
)

const (
	defaultFileMode = 0644
	defaultDirMode  = 0755
)

type entry struct {
	Seq        uint64           `json:"seq"`
	Submission model.Submission `json:"submission"`
}

// Outbox stores one JSON entry per line and tracks the commit watermark in
// a sidecar file.
type Outbox struct {
	mu         sync.Mutex
	path       string
	commitPath string
	file       *os.File
	nextSeq    uint64
	committed  uint64
}

// Open creates or opens an outbox at path. Committed entries are compacted
// away and a partially written trailing line is ignored.
func Open(path string) (*Outbox, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("outbox: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, fmt.Errorf("outbox: mkdir: %w", err)
	}

	commitPath := path + ".commit"
	committed, err := readCommitted(commitPath)
	if err != nil {
		return nil, err
	}

	maxSeq, err := compact(path, committed)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("outbox: open: %w", err)
	}

	return &Outbox{
		path:       path,
		commitPath: commitPath,
		file:       f,
		nextSeq:    max(maxSeq, committed) + 1,
		committed:  committed,
	}, nil
}

// Append persists sub and returns its sequence number.
func (o *Outbox) Append(sub model.Submission) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.file == nil {
		return 0, errors.New("outbox: closed")
	}

	seq := o.nextSeq
	line, err := json.Marshal(entry{Seq: seq, Submission: sub})
	if err != nil {
		return 0, fmt.Errorf("outbox: marshal entry: %w", err)
	}
	line = append(line, '\n')

	if _, err := o.file.Write(line); err != nil {
		return 0, fmt.Errorf("outbox: write entry: %w", err)
	}
	if err := o.file.Sync(); err != nil {
		return 0, fmt.Errorf("outbox: sync entry: %w", err)
	}
	o.nextSeq++
	return seq, nil
}

// Commit marks every entry up to seq as delivered.
func (o *Outbox) Commit(seq uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if seq <= o.committed {
		return nil
	}
	if err := writeCommitted(o.commitPath, seq); err != nil {
		return err
	}
	o.committed = seq
	return nil
}

// Committed returns the commit watermark.
func (o *Outbox) Committed() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.committed
}

// Pending calls fn for each uncommitted entry in sequence order. It stops at
// the first error fn returns.
func (o *Outbox) Pending(fn func(seq uint64, sub model.Submission) error) error {
	if fn == nil {
		return errors.New("outbox: pending callback is nil")
	}

	o.mu.Lock()
	path := o.path
	committed := o.committed
	o.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("outbox: open for replay: %w", err)
	}
	defer f.Close()

	return scanEntries(f, func(e entry, _ []byte) error {
		if e.Seq <= committed {
			return nil
		}
		return fn(e.Seq, e.Submission)
	})
}

// Close closes the underlying file.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.file == nil {
		return nil
	}
	err := o.file.Close()
	o.file = nil
	return err
}

// scanEntries feeds complete, well-formed lines to fn and stops quietly at
// the first partial or malformed one.
func scanEntries(r io.Reader, fn func(e entry, line []byte) error) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("outbox: read: %w", err)
		}
		if len(line) == 0 || line[len(line)-1] != '\n' {
			return nil
		}
		var e entry
		if json.Unmarshal(line, &e) != nil {
			return nil
		}
		if ferr := fn(e, line); ferr != nil {
			return ferr
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func readCommitted(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("outbox: read commit file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("outbox: parse commit seq: %w", err)
	}
	return seq, nil
}

func writeCommitted(path string, seq uint64) error {
	if err := atomicfile.Write(path, []byte(strconv.FormatUint(seq, 10)+"\n"), defaultFileMode); err != nil {
		return fmt.Errorf("outbox: write commit: %w", err)
	}
	return nil
}

// compact rewrites path keeping only uncommitted entries and returns the
// highest sequence number seen.
func compact(path string, committed uint64) (uint64, error) {
	src, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, defaultFileMode)
	if err != nil {
		return 0, fmt.Errorf("outbox: open for compact: %w", err)
	}
	defer src.Close()

	var (
		maxSeq uint64
		keep   []byte
	)
	err = scanEntries(src, func(e entry, line []byte) error {
		maxSeq = max(maxSeq, e.Seq)
		if e.Seq > committed {
			keep = append(keep, line...)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := atomicfile.Write(path, keep, defaultFileMode); err != nil {
		return 0, fmt.Errorf("outbox: compact: %w", err)
	}
	return maxSeq, nil
}
