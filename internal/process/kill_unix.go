//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// KillGroup sends SIGKILL to the process group led by pid. A group that has
// already exited is not an error.
func KillGroup(pid int) error {
	if err := checkPID(pid); err != nil {
		return err
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
