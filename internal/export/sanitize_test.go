package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"allowed chars pass through", "Clip 01 - Intro, (final).v2", 100, "Clip 01 - Intro, (final).v2"},
		{"disallowed replaced", "a/b\\c:d*e", 100, "a_b_c_d_e"},
		{"korean letters kept", "여름 바다", 100, "여름 바다"},
		{"surrounding space trimmed", "  edges  ", 100, "edges"},
		{"truncated by runes", "가나다라마바사", 3, "가나다"},
		{"empty in, empty out", "", 100, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeName(tc.in, tc.maxLen); got != tc.want {
				t.Errorf("SanitizeName(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestSanitizeName_StripsControlChars(t *testing.T) {
	got := SanitizeName("line\none\rtwo\tthree\x00", 100)
	if strings.ContainsAny(got, "\n\r\t\x00") {
		t.Fatalf("output still contains control chars: %q", got)
	}
	if got != "lineonetwothree" {
		t.Errorf("SanitizeName = %q, want lineonetwothree", got)
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateOutputDir(dir); err != nil {
		t.Fatalf("ValidateOutputDir(%q) error = %v, want nil", dir, err)
	}

	if err := ValidateOutputDir(""); err == nil {
		t.Error("empty dir should be rejected")
	}
	if err := ValidateOutputDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("missing dir should be rejected")
	}
	if err := ValidateOutputDir(dir + "/../" + filepath.Base(dir)); err == nil {
		t.Error("traversal should be rejected")
	}
}

func TestValidateOutputDir_FileIsNotADir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports.edl")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateOutputDir(path); err == nil {
		t.Fatal("regular file should be rejected as output dir")
	}
}
