package cli

import (
	"bytes"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	_, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	formatFlag := root.PersistentFlags().Lookup("format")
	if formatFlag == nil {
		t.Fatal("expected --format flag to exist")
	}
	if formatFlag.DefValue != "text" {
		t.Errorf("expected --format default 'text', got %q", formatFlag.DefValue)
	}

	dbFlag := root.PersistentFlags().Lookup("db")
	if dbFlag == nil {
		t.Fatal("expected --db flag to exist")
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != Version+"\n" {
		t.Errorf("output = %q, want %q", out, Version+"\n")
	}
}

func TestArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"show no id", []string{"comment", "show"}},
		{"show two ids", []string{"comment", "show", "1", "2"}},
		{"show non-numeric", []string{"comment", "show", "abc"}},
		{"edit no id", []string{"comment", "edit"}},
		{"edit no flags", []string{"comment", "edit", "1"}},
		{"delete no id", []string{"comment", "delete"}},
		{"delete negative", []string{"comment", "delete", "-5"}},
		{"add no message", []string{"comment", "add", "1"}},
		{"list no post", []string{"comment", "list"}},
		{"post add no title", []string{"post", "add"}},
		{"post list extra", []string{"post", "list", "extra"}},
		{"serve extra", []string{"serve", "extra"}},
		{"set-server no url", []string{"config", "set-server"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("NR_SERVER_URL", "http://127.0.0.1:1")
			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
