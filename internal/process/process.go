// Package process stops the helper processes spawned for PDF output, such
// as a headless browser and the renderer children it forks.
package process

import "errors"

// ErrInvalidPID is returned for a pid that cannot lead a process group.
// Zero and negative values would signal the caller's own group.
var ErrInvalidPID = errors.New("invalid process id")

func checkPID(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return nil
}
