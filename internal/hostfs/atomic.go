package hostfs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
)

// ReadFile reads the whole file before returning.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Mode returns the permission bits of an existing file, or def when the file
// does not exist yet.
func Mode(path string, def os.FileMode) os.FileMode {
	st, err := os.Stat(path)
	if err != nil {
		return def
	}
	return st.Mode().Perm()
}

// rename is replaced in tests to simulate a bind-mounted target.
var rename = os.Rename

// WriteFileAtomic replaces path with data. The data is written to a temp file
// in the same directory, synced and renamed over the target. Ownership of an
// existing target is carried over to the replacement.
//
// When the target cannot be renamed over (a bind mount) the file is
// rewritten in place instead and inPlace is true; that write is not atomic
// and callers should say so.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (inPlace bool, err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ltspacct-*")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if st, err := os.Stat(path); err == nil {
		if sys, ok := st.Sys().(*syscall.Stat_t); ok {
			_ = tmp.Chown(int(sys.Uid), int(sys.Gid))
		}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return false, err
	}
	if err := tmp.Close(); err != nil {
		return false, err
	}

	if err := rename(tmpName, path); err != nil {
		// A bind-mounted target cannot be replaced by rename (EBUSY/EXDEV).
		if errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.EXDEV) || errors.Is(err, syscall.EPERM) {
			return true, rewriteInPlace(path, data, perm)
		}
		return false, err
	}
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return false, nil
}

func rewriteInPlace(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Sync()
	return f.Close()
}
