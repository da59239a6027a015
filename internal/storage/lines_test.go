package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nibzard/tasker-go/internal/task"
)

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name string
		task task.Task
		want string
	}{
		{"main task", task.NewMain("Test"), "Test,false,false," + noParentField},
		{"sub-task", task.NewSub("Test", 0), "Test,true,false,0"},
		{"orphaned sub-task", task.Task{Name: "Test", IsSub: true, Parent: task.NoParent}, "Test,true,false," + noParentField},
		{"completed", task.Task{Name: "Done", IsSub: true, Completed: true, Parent: 7}, "Done,true,true,7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLine(tt.task); got != tt.want {
				t.Errorf("FormatLine(): got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNoParentFieldIsMaxUint(t *testing.T) {
	if strings.HasPrefix(noParentField, "-") || len(noParentField) < 10 {
		t.Errorf("noParentField: got %q", noParentField)
	}
	if strings.Contains(FormatLine(task.NewMain("x")), ",-1") {
		t.Error("missing parent must not be encoded as -1")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    task.Task
		wantErr bool
	}{
		{
			name: "main task",
			line: "Test,false,false," + noParentField,
			want: task.NewMain("Test"),
		},
		{
			name: "main task with stray parent",
			line: "Test,false,true,3",
			want: task.Task{Name: "Test", Completed: true, Parent: task.NoParent},
		},
		{
			name: "sub-task",
			line: "Sub,true,false,2",
			want: task.NewSub("Sub", 2),
		},
		{
			name: "empty name",
			line: ",false,false," + noParentField,
			want: task.NewMain(""),
		},
		{name: "too few fields", line: "Test,false,false", wantErr: true},
		{name: "too many fields", line: "T,e,s,t,,,Te,s,,t", wantErr: true},
		{name: "bad is_sub", line: "Test,yes,false,0", wantErr: true},
		{name: "bad completed", line: "Test,false,True,0", wantErr: true},
		{name: "negative parent", line: "Test,true,false,-1", wantErr: true},
		{name: "non-numeric parent", line: "Test,true,false,abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLine(%q): got %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestLinesRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	repo := &LinesRepository{Path: path}

	original := sampleTasks()
	if err := repo.Save(original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestLinesRepositorySkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	content := strings.Join([]string{
		"A,false,false," + noParentField,
		"broken line",
		"",
		"B,true,false,0",
		"C,maybe,false,0",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	repo := &LinesRepository{Path: path, Logger: testLogger(&logs)}
	tasks, err := repo.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []task.Task{task.NewMain("A"), task.NewSub("B", 0)}
	if !reflect.DeepEqual(tasks, want) {
		t.Errorf("Load: got %+v, want %+v", tasks, want)
	}
	out := logs.String()
	if strings.Count(out, "Skipping malformed task") != 2 {
		t.Errorf("expected two diagnostics, got:\n%s", out)
	}
	if !strings.Contains(out, "line 2") || !strings.Contains(out, "line 5") {
		t.Errorf("diagnostics should name line numbers, got:\n%s", out)
	}
}

func TestLinesRepositoryWritesTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.txt")
	repo := &LinesRepository{Path: path}
	if err := repo.Save([]task.Task{task.NewMain("A"), task.NewSub("B", 0)}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "A,false,false," + noParentField + "\nB,true,false,0\n"
	if string(data) != want {
		t.Errorf("file contents: got %q, want %q", data, want)
	}

	if err := repo.Save(nil); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("saving an empty list should truncate, got %q", data)
	}
}
