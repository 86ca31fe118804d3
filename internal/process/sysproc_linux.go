//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr asks the kernel to send the child SIGTERM when the
// parent thread dies, so a crashed parent does not leave children writing
// into pipes nobody reads.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGTERM,
	}
}
