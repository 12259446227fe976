package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// localStorage keeps each object as a flat file in one directory.
type localStorage struct {
	dir string
}

// NewLocal resolves dir to an absolute path, creates it if absent and returns a Storage over it.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{dir: abs}, nil
}

// path maps key to a file directly inside the storage directory. Keys carrying
// separators or dot segments are rejected so no key can escape the directory.
func (l *localStorage) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}

// Put streams r into a temp file next to the target and renames it into place,
// so a failed write never leaves content under key.
func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	target, err := l.path(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	// The directory may have been removed by an operator since startup.
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return ObjectInfo{}, fmt.Errorf("write content: %w", err)
	}
	if opt.Size >= 0 && written != opt.Size {
		tmp.Close()
		return ObjectInfo{}, fmt.Errorf("write content: wrote %d bytes, expected %d", written, opt.Size)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ObjectInfo{}, fmt.Errorf("sync content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close content: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return ObjectInfo{}, fmt.Errorf("commit content: %w", err)
	}
	committed = true

	info := ObjectInfo{
		Key:         key,
		Location:    target,
		Size:        written,
		ContentType: opt.ContentType,
		Metadata:    opt.Metadata,
	}
	if st, err := os.Stat(target); err == nil {
		info.LastModified = st.ModTime()
	}
	return info, nil
}

// Get opens the file for key. The returned reader is an *os.File.
func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, ObjectInfo{}, mapNotExist(err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	return f, fileInfo(key, p, st), nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return mapNotExist(err)
	}
	return nil
}

func fileInfo(key, p string, st fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Location:     p,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(p)),
		LastModified: st.ModTime(),
	}
}

func mapNotExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}
