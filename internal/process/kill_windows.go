//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// KillGroup terminates pid and its child tree with taskkill.
func KillGroup(pid int) error {
	if err := checkPID(pid); err != nil {
		return err
	}
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput() // #nosec G204 -- pid is numeric
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, out)
	}
	return nil
}
