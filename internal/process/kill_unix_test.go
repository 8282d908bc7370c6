//go:build !windows

package process

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestKillGroup_StopsChildTree(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sh", "-c", "sleep 30 & sleep 30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sh: %v", err)
	}

	if err := KillGroup(cmd.Process.Pid); err != nil {
		t.Fatalf("KillGroup() = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("process group still running after KillGroup")
	}
}

func TestKillGroup_GoneGroupIsNotAnError(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot run true: %v", err)
	}

	if err := KillGroup(cmd.Process.Pid); err != nil {
		t.Errorf("KillGroup() on exited group = %v, want nil", err)
	}
}
