package exercise

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const ownershipTOML = `
id = 3
slug = "ownership"
title = "Ownership"
starter_code = """
fn main() {
    let s1 = String::from("hi");
    println!("{}", s1);
}"""
expected_stdout = "hi"
fixed_top = "fn main() {"
required_token = "s1"
top_lock_lines = 1
check_script = '''
function check(solution)
  return true
end
'''
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ownership.toml", ownershipTOML)

	ex, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if ex.ID != 3 || ex.Slug != "ownership" || ex.FixedTop != "fn main() {" {
		t.Errorf("unexpected exercise %+v", ex)
	}
	if ex.StarterCode != "fn main() {\n    let s1 = String::from(\"hi\");\n    println!(\"{}\", s1);\n}" {
		t.Errorf("StarterCode = %q", ex.StarterCode)
	}
	if ex.TopLockLines == nil || *ex.TopLockLines != 1 || ex.BottomSentinel != nil {
		t.Errorf("overrides = %v, %v", ex.TopLockLines, ex.BottomSentinel)
	}
	if ex.CheckScript == "" {
		t.Error("CheckScript should be loaded")
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "e.json", `{"id": 9, "starterCode": "x"}`)

	ex, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if ex.ID != 9 || ex.StarterCode != "x" {
		t.Errorf("unexpected exercise %+v", ex)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unsupported", "e.yaml", "id: 1", ErrUnsupportedFormat},
		{"toml without id", "e.toml", `title = "x"`, ErrMissingID},
		{"toml zero id", "zero.toml", `id = 0`, ErrMissingID},
		{"json zero id", "zero.json", `{"id": 0}`, ErrMissingID},
		{"toml negative id", "neg.toml", `id = -1`, ErrInvalidID},
		{"json negative id", "neg.json", `{"id": -1}`, ErrInvalidID},
		{"bad json", "e.json", `{`, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadFile(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v", err)
	}
	if _, err := LoadFile(writeFile(t, dir, "bad.toml", "id = ")); err == nil {
		t.Error("expected TOML syntax error")
	}
}
