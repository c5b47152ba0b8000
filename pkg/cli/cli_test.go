package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBrackets(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"1 + 2", 0},
		{"fn f() {", 1},
		{"fn f() {\n  let a = [1, {", 3},
		{"\"a { b\"", 0},
		{"\"esc \\\" {\"", 0},
		{"f(x)", 0},
	}
	for _, tt := range tests {
		if got := openBrackets(tt.src); got != tt.want {
			t.Errorf("openBrackets(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	if code := Run([]string{"version"}); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
}

func TestBuildRunAndDisasm(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.soli")
	bundle := filepath.Join(dir, "main.solib")
	if err := os.WriteFile(src, []byte("let x = 40\nx + 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if code := Run([]string{"build", "-o", bundle, src}); code != 0 {
		t.Fatalf("build exit code = %d", code)
	}
	if _, err := os.Stat(bundle); err != nil {
		t.Fatalf("bundle not written: %v", err)
	}
	if code := Run([]string{bundle}); code != 0 {
		t.Fatalf("run bundle exit code = %d", code)
	}
	if code := Run([]string{"disasm", bundle}); code != 0 {
		t.Fatalf("disasm exit code = %d", code)
	}
	if code := Run([]string{src}); code != 0 {
		t.Fatalf("run source exit code = %d", code)
	}
}

func TestRunReportsMissingFile(t *testing.T) {
	if code := Run([]string{filepath.Join(t.TempDir(), "absent.soli")}); code == 0 {
		t.Fatal("expected nonzero exit for missing file")
	}
}
