package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func requireShell(tb testing.TB) {
	tb.Helper()
	if runtime.GOOS == "windows" {
		tb.Skip("requires a POSIX shell")
	}
}

// execute runs the CLI in-process and returns its exit code and output.
func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	t.Parallel()
	requireShell(t)

	type testCase struct {
		args       []string
		wantCode   int
		wantStdout string
		wantStderr []string
	}

	tests := map[string]testCase{
		"success": {
			args:       []string{"run", "--", "/bin/sh", "-c", "echo a; echo b"},
			wantCode:   0,
			wantStdout: "a\nb\n",
			wantStderr: []string{"exit code: 0"},
		},
		"child exit code is passed through": {
			args:       []string{"run", "--", "/bin/sh", "-c", "echo partial; echo warn >&2; exit 3"},
			wantCode:   3,
			wantStdout: "partial\n",
			wantStderr: []string{"warn", "exit code: 3"},
		},
		"child flags without separator": {
			args:       []string{"run", "/bin/sh", "-c", "echo flags; exit 0"},
			wantCode:   0,
			wantStdout: "flags\n",
			wantStderr: []string{"exit code: 0"},
		},
		"strict before the command is ours": {
			args:       []string{"run", "--strict", "/bin/sh", "-c", "echo --strict >&2; exit 2"},
			wantCode:   2,
			wantStderr: []string{"Error: exit status 2: [--strict]"},
		},
		"strict reports the output": {
			args:       []string{"run", "--strict", "--", "/bin/sh", "-c", "echo boom >&2; exit 1"},
			wantCode:   1,
			wantStderr: []string{"boom", "Error: exit status 1: [boom]"},
		},
		"strict success": {
			args:       []string{"run", "--strict", "--", "/bin/sh", "-c", "echo fine"},
			wantCode:   0,
			wantStdout: "fine\n",
		},
		"missing binary": {
			args:       []string{"run", "--", "/nonexistent/procwait-test-binary"},
			wantCode:   ExitGeneral,
			wantStderr: []string{"Error: start /nonexistent/procwait-test-binary"},
		},
		"missing command": {
			args:       []string{"run"},
			wantCode:   ExitUsage,
			wantStderr: []string{"Run 'procwait --help' for usage"},
		},
		"invalid log level": {
			args:       []string{"--log-level", "loud", "run", "--", "true"},
			wantCode:   ExitConfig,
			wantStderr: []string{"invalid log level"},
		},
		"dedicated pool": {
			args:       []string{"--pool-size", "1", "run", "--", "/bin/sh", "-c", "echo pooled"},
			wantCode:   0,
			wantStdout: "pooled\n",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			code, stdout, stderr := execute(t, tc.args...)
			if code != tc.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %q)", code, tc.wantCode, stderr)
			}
			if tc.wantStdout != "" && stdout != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tc.wantStdout)
			}
			for _, want := range tc.wantStderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr = %q, should contain %q", stderr, want)
				}
			}
		})
	}
}

func TestRun_LargeOutput(t *testing.T) {
	t.Parallel()
	requireShell(t)

	code, stdout, _ := execute(t, "run", "--", "/bin/sh", "-c",
		`i=0; while [ $i -lt 5000 ]; do echo "line $i"; echo "err $i" >&2; i=$((i+1)); done`)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if got := strings.Count(stdout, "\n"); got != 5000 {
		t.Errorf("stdout lines = %d, want 5000", got)
	}
}

func TestPid(t *testing.T) {
	t.Parallel()
	requireShell(t)

	self := strconv.Itoa(os.Getpid())

	type testCase struct {
		args       []string
		wantCode   int
		wantStdout string
	}

	tests := map[string]testCase{
		"self is running": {
			args:       []string{"pid", self},
			wantStdout: "running\n",
		},
		"invalid pid": {
			args:     []string{"pid", "nope"},
			wantCode: ExitUsage,
		},
		"wait-stopped times out on a live pid": {
			args:     []string{"pid", self, "--wait-stopped", "--timeout", "200ms"},
			wantCode: ExitGeneral,
		},
		"missing argument": {
			args:     []string{"pid"},
			wantCode: ExitUsage,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			code, stdout, stderr := execute(t, tc.args...)
			if code != tc.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %q)", code, tc.wantCode, stderr)
			}
			if tc.wantStdout != "" && stdout != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tc.wantStdout)
			}
		})
	}
}

func TestPid_WaitStoppedInterrupted(t *testing.T) {
	t.Parallel()
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(200*time.Millisecond, cancel)

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"pid", strconv.Itoa(os.Getpid()), "--wait-stopped", "--timeout", "30s"}, &stdout, &stderr)
	if code != ExitInterrupted {
		t.Errorf("exit code = %d, want %d (stderr: %q)", code, ExitInterrupted, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestExitWith(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		code int
		want int
	}{
		"passes through": {code: 42, want: 42},
		"signaled child": {code: -1, want: ExitGeneral},
		"out of range":   {code: 300, want: ExitGeneral},
		"max":            {code: 255, want: 255},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := exitWith(tc.code).Code; got != tc.want {
				t.Errorf("exitWith(%d).Code = %d, want %d", tc.code, got, tc.want)
			}
		})
	}
}

// newFlagSet returns a parsed flag set as the root command would see it.
func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("procwait", pflag.ContinueOnError)
	registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

// The config tests use t.Setenv and therefore cannot run in parallel.

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newFlagSet(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := cliConfig{LogLevel: "info", LogFormat: "text"}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv("PROCWAIT_LOG_LEVEL", "debug")
	t.Setenv("PROCWAIT_POOL_SIZE", "7")
	t.Setenv("PROCWAIT_LOG_FORMAT", "json")
	t.Setenv("PROCWAIT_METRICS_ENDPOINT", "collector:4317")

	cfg, err := loadConfig(newFlagSet(t, "--log-format", "text"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want env value %q", cfg.LogLevel, "debug")
	}
	if cfg.PoolSize != 7 {
		t.Errorf("PoolSize = %d, want env value 7", cfg.PoolSize)
	}
	if cfg.MetricsEndpoint != "collector:4317" {
		t.Errorf("MetricsEndpoint = %q, want env value %q", cfg.MetricsEndpoint, "collector:4317")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, flag must win over env", cfg.LogFormat)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procwait.yaml")
	if err := os.WriteFile(path, []byte("log-level: warn\npool-size: 2\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PROCWAIT_POOL_SIZE", "5")

	cfg, err := loadConfig(newFlagSet(t, "--config", path))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value %q", cfg.LogLevel, "warn")
	}
	if cfg.PoolSize != 5 {
		t.Errorf("PoolSize = %d, env must win over the file", cfg.PoolSize)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PROCWAIT_LOG_FORMAT", "xml")

	_, err := loadConfig(newFlagSet(t, "--log-level", "loud", "--pool-size", "-1"))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"invalid log level", "invalid log format", "pool size must not be negative"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err = %q, should contain %q", err, want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(cliConfig{LogLevel: "debug", LogFormat: "json"}, &buf).Debug("hello")
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"component":"procwait"`) {
		t.Errorf("json log = %q", buf.String())
	}

	buf.Reset()
	newLogger(cliConfig{LogLevel: "warn", LogFormat: "text"}, &buf).Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %q", buf.String())
	}
}
