package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/mhalver/msiecctl/internal/errors"
)

const pidFile = "msiecctl.pid"

func path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write records the current process ID, refusing to start when a previous
// instance still holds the file and is alive.
func Write() error {
	errFactory := errors.New()

	if other, err := readLivePID(); err != nil {
		return err
	} else if other != 0 {
		return errFactory.WithData(errors.ErrAlreadyRunning, other)
	}

	if err := os.WriteFile(path(), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file.
func Remove() error {
	if _, err := os.Stat(path()); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path()); err != nil {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

// readLivePID returns the PID from an existing file when that process is
// still running, and 0 otherwise. A stale file is not an error.
func readLivePID() (int, error) {
	errFactory := errors.New()

	raw, err := os.ReadFile(path())
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrInternal, err)
	}

	pid, err := strconv.Atoi(string(raw))
	if err != nil {
		// Garbage in the file; treat it as stale.
		return 0, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err == nil {
		return pid, nil
	}

	return 0, nil
}
