package authrecord

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

var _ Repo = (*FileRepo)(nil)

// FileRepo stores the record as a single file in a per-user directory.
type FileRepo struct {
	dir  string
	file string
}

// NewFileRepo creates a FileRepo for dir/file. Nothing is touched on disk
// until Save.
func NewFileRepo(dir, file string) (*FileRepo, error) {
	if dir == "" {
		return nil, errors.New("[NewFileRepo] dir is required")
	}
	if file == "" || filepath.Base(file) != file {
		return nil, errors.Errorf("[NewFileRepo] invalid record file name %q", file)
	}
	return &FileRepo{dir: dir, file: file}, nil
}

func (r *FileRepo) Path() string {
	return filepath.Join(r.dir, r.file)
}

func (r *FileRepo) Load() (*Record, error) {
	data, err := os.ReadFile(r.Path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo Load] os.ReadFile")
	}
	return Deserialize(string(data))
}

// Save creates the directory if needed and replaces the record file. The
// write goes through a temp file in the same directory and a rename, so a
// reader sees either the old record or the new one.
func (r *FileRepo) Save(record *Record) error {
	data, err := Serialize(record)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, dirPerm); err != nil {
		return errors.Wrap(err, "[FileRepo Save] os.MkdirAll")
	}

	tmp, err := os.CreateTemp(r.dir, r.file+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileRepo Save] os.CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileRepo Save] write")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileRepo Save] chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileRepo Save] close")
	}
	if err := os.Rename(tmp.Name(), r.Path()); err != nil {
		return errors.Wrap(err, "[FileRepo Save] os.Rename")
	}
	return nil
}

func (r *FileRepo) Delete() error {
	err := os.Remove(r.Path())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo Delete] os.Remove")
	}
	return nil
}
