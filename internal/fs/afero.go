package fs

import (
	iofs "io/fs"
	"os"

	"github.com/spf13/afero"
)

// AferoFS adapts an afero.Fs, e.g. afero.NewMemMapFs for tests or
// afero.NewBasePathFs to jail a store below a directory.
type AferoFS struct {
	Fs afero.Fs
}

// FromAfero wraps a.
func FromAfero(a afero.Fs) FileSystem { return AferoFS{Fs: a} }

func (a AferoFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := a.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (a AferoFS) Remove(name string) error                     { return a.Fs.Remove(name) }
func (a AferoFS) Rename(oldpath, newpath string) error         { return a.Fs.Rename(oldpath, newpath) }
func (a AferoFS) MkdirAll(path string, perm os.FileMode) error { return a.Fs.MkdirAll(path, perm) }

func (a AferoFS) ReadDir(name string) ([]os.DirEntry, error) {
	infos, err := afero.ReadDir(a.Fs, name)
	if err != nil {
		return nil, err
	}
	entries := make([]os.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = iofs.FileInfoToDirEntry(info)
	}
	return entries, nil
}
