package templaterepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// FSRepo reads templates from the files of one directory.
type FSRepo struct {
	fsys fs.FS
}

var _ Repo = (*FSRepo)(nil)

// NewFS reads templates from dir.
func NewFS(dir string) *FSRepo {
	return NewFromFS(os.DirFS(dir))
}

func NewFromFS(fsys fs.FS) *FSRepo {
	return &FSRepo{fsys: fsys}
}

func (r *FSRepo) Get(_ context.Context, name string) (Template, error) {
	if !validName(name) {
		return Template{}, fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}

	content, err := fs.ReadFile(r.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err != nil {
		return Template{}, fmt.Errorf("read template %s: %w", name, err)
	}

	return NewTemplate(name, string(content)), nil
}

func (r *FSRepo) Exists(_ context.Context, name string) bool {
	if !validName(name) {
		return false
	}

	info, err := fs.Stat(r.fsys, name)
	return err == nil && !info.IsDir()
}

// validName accepts plain file names only, a template never lives outside the directory.
func validName(name string) bool {
	return name != "" && fs.ValidPath(name) && name != "." && !strings.ContainsAny(name, `/\`)
}
