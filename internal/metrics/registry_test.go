package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTextfile(t *testing.T) {
	reg, m := NewRegistry()
	m.Threats.Add(2)

	path := filepath.Join(t.TempDir(), "plansched.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "plansched_threats_total 2") {
		t.Errorf("textfile missing threat counter:\n%s", data)
	}
}
