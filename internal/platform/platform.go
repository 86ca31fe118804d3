// Package platform identifies the host operating system and builds child
// process commands the way the rest of procwait expects them.
package platform

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform is a host operating system family.
type Platform int

const (
	Other Platform = iota
	Linux
	Darwin
	Solaris
	Windows
)

// String returns the lower-case platform name.
func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Darwin:
		return "darwin"
	case Solaris:
		return "solaris"
	case Windows:
		return "windows"
	default:
		return "other"
	}
}

// IsWindows reports whether p is Windows.
func (p Platform) IsWindows() bool { return p == Windows }

// IsUnixLike reports whether p has a POSIX shell and ps(1).
func (p Platform) IsUnixLike() bool {
	return p == Linux || p == Darwin || p == Solaris
}

// Current returns the platform procwait is running on.
func Current() Platform {
	return fromGOOS(runtime.GOOS)
}

func fromGOOS(goos string) Platform {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return Darwin
	case "solaris", "illumos":
		return Solaris
	case "windows":
		return Windows
	default:
		return Other
	}
}

// Shell is the interpreter ShellCommand hands a command line to on
// non-Windows platforms.
const Shell = "/bin/sh"

// Command returns an *exec.Cmd for name and args. Outside Windows the
// child's environment gets BASH_ENV pointing at the user's ~/.bash_profile,
// so bash children see the same setup as an interactive login.
func Command(name string, args ...string) *exec.Cmd {
	return command(Current(), name, args...)
}

func command(p Platform, name string, args ...string) *exec.Cmd {
	cmd := exec.Command(name, args...)
	if p.IsWindows() {
		return cmd
	}
	// HOME unset or unresolvable leaves the environment untouched.
	if home, err := os.UserHomeDir(); err == nil {
		cmd.Env = append(os.Environ(), "BASH_ENV="+filepath.Join(home, ".bash_profile"))
	}
	return cmd
}

// ShellCommand returns a command that runs line through /bin/sh -c, so
// pipes and redirections work. On Windows there is no such shell and line
// is split on whitespace into a program and its arguments.
func ShellCommand(line string) *exec.Cmd {
	return shellCommand(Current(), line)
}

func shellCommand(p Platform, line string) *exec.Cmd {
	if !p.IsWindows() {
		return command(p, Shell, "-c", line)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		// exec.Cmd reports the empty name from Start.
		return command(p, "")
	}
	return command(p, fields[0], fields[1:]...)
}
