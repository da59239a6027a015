package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

// isolate points HOME and the config dirs at a temp dir, clears TASKER_*
// variables, and changes into a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"TASKER_FILE", "TASKER_FORMAT", "TASKER_SHOW_INDEX",
		"TASKER_LOG_LEVEL", "TASKER_LOG_FORMAT", "TASKER_LOG_TIMESTAMPS", "TASKER_LOG_CALLER",
	} {
		t.Setenv(key, "")
	}
	wd := t.TempDir()
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return wd
}

func runWith(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, streams{
		in:  strings.NewReader(input),
		out: &out,
		err: &errOut,
	})
	return out.String(), errOut.String(), err
}

func readTaskFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		isolate(t)
		out, _, err := runWith(t, "", "--help")
		if err != nil {
			t.Fatalf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out, "Usage:") {
			t.Errorf("expected usage, got %q", out)
		}
	})

	t.Run("shows help with -h flag", func(t *testing.T) {
		isolate(t)
		if _, _, err := runWith(t, "", "-h"); err != nil {
			t.Errorf("expected no error with -h, got %v", err)
		}
	})

	t.Run("shows version with --version flag", func(t *testing.T) {
		isolate(t)
		out, _, err := runWith(t, "", "--version")
		if err != nil {
			t.Fatalf("expected no error with --version, got %v", err)
		}
		if out != "tasker version dev\n" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("version subcommand", func(t *testing.T) {
		isolate(t)
		out, _, err := runWith(t, "", "version")
		if err != nil || !strings.HasPrefix(out, "tasker version") {
			t.Errorf("got %q, %v", out, err)
		}
	})

	t.Run("help subcommand", func(t *testing.T) {
		isolate(t)
		out, _, err := runWith(t, "", "help")
		if err != nil || !strings.Contains(out, "Commands:") {
			t.Errorf("got %q, %v", out, err)
		}
	})

	t.Run("returns error for unknown command", func(t *testing.T) {
		isolate(t)
		_, errOut, err := runWith(t, "", "frobnicate")
		if err == nil {
			t.Fatal("expected error for unknown command")
		}
		if !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("unexpected error: %v", err)
		}
		if !strings.Contains(errOut, "Unknown command: frobnicate") {
			t.Errorf("stderr: %q", errOut)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		isolate(t)
		if _, _, err := runWith(t, "", "-format", "yaml", "ls"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestRunREPLDefault(t *testing.T) {
	wd := isolate(t)

	out, _, err := runWith(t, "add groceries\nsub milk\ndone 0\nexit\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("expected goodbye, got %q", out)
	}

	got := readTaskFile(t, filepath.Join(wd, "tasks.txt"))
	want := "groceries,false,true,18446744073709551615\nmilk,true,true,0\n"
	if got != want {
		t.Errorf("task file:\ngot  %q\nwant %q", got, want)
	}
}

func TestRunREPLFileArgument(t *testing.T) {
	wd := isolate(t)

	if _, _, err := runWith(t, "add one\n", "repl", "my.txt"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := readTaskFile(t, filepath.Join(wd, "my.txt")); !strings.HasPrefix(got, "one,false,false,") {
		t.Errorf("task file: %q", got)
	}
}

func TestRunREPLFlatFormat(t *testing.T) {
	wd := isolate(t)

	out, _, err := runWith(t, "add laundry\nsub socks\nexit\n", "-format", "flat")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Unknown command") {
		t.Errorf("expected sub to be unknown in flat mode, got %q", out)
	}
	if got := readTaskFile(t, filepath.Join(wd, "tasks.txt")); got != "laundry,,false\n" {
		t.Errorf("task file: %q", got)
	}
}

func TestRunREPLJSONFormat(t *testing.T) {
	wd := isolate(t)

	if _, _, err := runWith(t, "add a\nsub b\n", "-format", "json"); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := readTaskFile(t, filepath.Join(wd, "tasks.json"))
	if !strings.Contains(got, `"name": "b"`) || !strings.Contains(got, `"parent": 0`) {
		t.Errorf("task file: %s", got)
	}
}

func TestRunREPLHideIndex(t *testing.T) {
	isolate(t)

	out, _, err := runWith(t, "add a\nexit\n", "repl", "-show-index=false")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out, "0 [ ] a") {
		t.Errorf("expected no indices, got %q", out)
	}
	if !strings.Contains(out, "[ ] a") {
		t.Errorf("expected task in listing, got %q", out)
	}
}

func TestRunLs(t *testing.T) {
	wd := isolate(t)
	path := filepath.Join(wd, "tasks.txt")
	content := "a,false,true,18446744073709551615\nb,true,true,0\nc,false,false,18446744073709551615\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "all tasks",
			args: []string{"ls"},
			want: "Here are all the items:\n0 [x] a\n1  -> [x] b\n2 [ ] c\n",
		},
		{
			name: "pending only",
			args: []string{"ls", "-pending"},
			want: "Here are all the items:\n2 [ ] c\n",
		},
		{
			name: "without indices",
			args: []string{"-show-index=false", "ls", "-pending"},
			want: "Here are all the items:\n[ ] c\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runWith(t, "", tt.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRunLsMissingFile(t *testing.T) {
	isolate(t)
	out, _, err := runWith(t, "", "ls")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "Here are all the items:\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunConfig(t *testing.T) {
	wd := isolate(t)
	t.Setenv("TASKER_FORMAT", "json")

	out, _, err := runWith(t, "", "config")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var decoded struct {
		TaskFile string `toml:"task_file"`
		Format   string `toml:"format"`
	}
	if _, err := toml.Decode(out, &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if decoded.Format != "json" {
		t.Errorf("format: got %q", decoded.Format)
	}
	if decoded.TaskFile != filepath.Join(wd, "tasks.json") {
		t.Errorf("task_file: got %q", decoded.TaskFile)
	}
}

func TestRunTUIRejectsFlat(t *testing.T) {
	isolate(t)
	if _, _, err := runWith(t, "", "-format", "flat", "tui"); err == nil {
		t.Error("expected error for tui with flat format")
	}
}
