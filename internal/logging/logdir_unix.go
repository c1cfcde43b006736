//go:build !windows

package logging

import (
	"fmt"
	"os"
	"syscall"
)

// prepareLogDir creates dir with 0700 or tightens a group/world accessible dir
// owned by the current user. Explicitly configured dirs are never changed; a
// warning is returned instead.
func prepareLogDir(dir string, explicit bool) (string, error) {
	if dir == "" || dir == "." {
		return "", nil
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("logging: create log dir: %w", err)
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("logging: stat log dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("logging: log dir %q is not a directory", dir)
	}
	mode := info.Mode().Perm()
	switch {
	case mode&0o077 == 0:
		return "", nil
	case explicit:
		return fmt.Sprintf("log dir %s is group/world accessible (%s); consider chmod 0700", dir, mode), nil
	case !ownedByCurrentUser(info):
		return fmt.Sprintf("log dir %s is not owned by the current user; permissions unchanged", dir), nil
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("logging: chmod log dir: %w", err)
	}
	return "", nil
}

func ownedByCurrentUser(info os.FileInfo) bool {
	stat, ok := info.Sys().(*syscall.Stat_t)
	return ok && stat.Uid == uint32(os.Getuid())
}
