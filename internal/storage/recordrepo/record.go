package recordrepo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	FieldEmail     = "email"
	FieldTemplate  = "template"
	FieldFirstname = "firstname"
	FieldLastname  = "lastname"
)

// RequiredColumns must appear in the header of every records file.
var RequiredColumns = []string{FieldEmail, FieldTemplate}

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrFieldNotFound  = errors.New("field not found")
	ErrMalformedRow   = errors.New("malformed row")
)

// Record is one CSV row keyed by column name.
type Record struct {
	// Row is the 1-based line of the row in the file, the header is row 1.
	Row    int
	Fields map[string]string
}

// Get looks up one field and fails with ErrFieldNotFound naming it.
func (r Record) Get(field string) (string, error) {
	value, ok := r.Fields[field]
	if !ok {
		return "", fmt.Errorf("%w: row %d has no %q", ErrFieldNotFound, r.Row, field)
	}

	return value, nil
}

func (r Record) Email() string {
	return r.Fields[FieldEmail]
}

func (r Record) Template() string {
	return r.Fields[FieldTemplate]
}

// FullName is "firstname lastname" when both fields exist, empty otherwise.
func (r Record) FullName() string {
	first, okFirst := r.Fields[FieldFirstname]
	last, okLast := r.Fields[FieldLastname]
	if !okFirst || !okLast {
		return ""
	}

	return strings.TrimSpace(first + " " + last)
}

// Records is the content of one records file in source order.
type Records struct {
	Path    string
	Columns []string
	Items   []Record
}

func (rs *Records) HasColumn(name string) bool {
	for _, col := range rs.Columns {
		if col == name {
			return true
		}
	}

	return false
}

// Find returns the first record whose email equals email.
func (rs *Records) Find(email string) (Record, bool) {
	for _, rec := range rs.Items {
		if rec.Email() == email {
			return rec, true
		}
	}

	return Record{}, false
}

func checkColumns(columns []string) error {
	have := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		have[col] = struct{}{}
	}

	missing := make([]string, 0)
	for _, col := range RequiredColumns {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// SiblingPath is <dir>/<stem><suffix> for the records file at recordsPath,
// the naming of every file that belongs to one records file.
func SiblingPath(recordsPath, suffix string) string {
	dir := filepath.Dir(recordsPath)
	stem := strings.TrimSuffix(filepath.Base(recordsPath), filepath.Ext(recordsPath))
	return filepath.Join(dir, stem+suffix)
}
