package sendlog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/yusufsyaifudin/mailmerge/internal/storage/recordrepo"
)

// State is the latest entry per recipient email.
type State map[string]LogEntry

// IsAlreadySent is the only skip rule: a previous failure never blocks a retry.
func (s State) IsAlreadySent(email string) bool {
	entry, exist := s[email]
	return exist && entry.WasSuccessful()
}

// Path is <dir>/<stem>-sent.log for the records file at recordsPath.
func Path(recordsPath string) string {
	return recordrepo.SiblingPath(recordsPath, "-sent.log")
}

// Load folds the log at path into a State, later lines win.
// A missing log is created empty so later appends succeed.
func Load(path string) (State, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create send log %s: %w", path, err)
		}

		return State{}, f.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("open send log %s: %w", path, err)
	}

	defer f.Close()

	state := State{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry LogEntry
		if err = json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("send log %s line %d: %w", path, lineNo, err)
		}

		if err = entry.Validate(); err != nil {
			return nil, fmt.Errorf("send log %s line %d: %w", path, lineNo, err)
		}

		state[entry.Email] = entry
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read send log %s: %w", path, err)
	}

	return state, nil
}

// Writer appends entries to a send log. Each Append is durable once it returns.
type Writer struct {
	path string
	file *os.File
}

func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open send log %s for append: %w", path, err)
	}

	return &Writer{path: path, file: f}, nil
}

func (w *Writer) Append(entry LogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode log entry for %s: %w", entry.Email, err)
	}

	// one write per line keeps a crash from leaving half an entry behind another
	if _, err = w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append to send log %s: %w", w.path, err)
	}

	if err = w.file.Sync(); err != nil {
		return fmt.Errorf("sync send log %s: %w", w.path, err)
	}

	return nil
}

func (w *Writer) Close() error {
	return w.file.Close()
}
