package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lereldarion/rett/internal/fs"
)

// SaveToFile writes a file through writeFunc, atomically.
//
// The data is first written to a temp file in the target directory, synced,
// then renamed over the target. Readers never observe a partially written
// file.
func SaveToFile(filename string, writeFunc func(io.Writer) error) error {
	return SaveToFileFS(fs.Default, filename, writeFunc)
}

// SaveToFileFS is SaveToFile on an explicit file system.
func SaveToFileFS(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	// Write to a temp file in the same directory to ensure rename is atomic.
	tmpName := fmt.Sprintf("%s.tmp-%d", filename, time.Now().UnixNano())

	f, err := fsys.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if tmpName != "" {
			_ = f.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(f, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	// Atomically replace target.
	if err := fsys.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := fsys.OpenFile(filepath.Dir(filename), os.O_RDONLY, 0); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// LoadFromFile opens filename and hands a random-access reader to readFunc.
func LoadFromFile(filename string, readFunc func(io.ReadSeeker) error) error {
	return LoadFromFileFS(fs.Default, filename, readFunc)
}

// LoadFromFileFS is LoadFromFile on an explicit file system.
func LoadFromFileFS(fsys fs.FileSystem, filename string, readFunc func(io.ReadSeeker) error) error {
	f, err := fsys.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return readFunc(f)
}
