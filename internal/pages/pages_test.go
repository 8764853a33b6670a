package pages

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestSelect(t *testing.T) {
	body, variant := Select(true)
	if !bytes.Equal(body, Target()) || variant != VariantTarget {
		t.Errorf("expected target page for a match, got variant %s", variant)
	}

	body, variant = Select(false)
	if !bytes.Equal(body, Default()) || variant != VariantDefault {
		t.Errorf("expected default page otherwise, got variant %s", variant)
	}
}

func TestTarget_Content(t *testing.T) {
	page := Target()

	for _, want := range []string{
		`<html lang="fa" dir="rtl">`,
		`<a href="https://example.com/ir">`,
		"text-align: right;",
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("target page is missing %q", want)
		}
	}
}

func TestDefault_Content(t *testing.T) {
	page := Default()

	for _, want := range []string{
		"<title>Access Restricted</title>",
		`<div class="popup">`,
		"position: fixed;",
	} {
		if !bytes.Contains(page, []byte(want)) {
			t.Errorf("default page is missing %q", want)
		}
	}

	if bytes.Contains(page, []byte("https://example.com/ir")) {
		t.Error("default page must not carry the target link")
	}
}

func TestPages_NoTemplatePlaceholders(t *testing.T) {
	for name, page := range map[string][]byte{"target": Target(), "default": Default()} {
		if bytes.Contains(page, []byte("{{")) {
			t.Errorf("%s page should be static, found a template action", name)
		}
	}
}

// TestPages_ExactBytes pins both bodies byte for byte, including the leading
// newline and the indentation the pages are served with
func TestPages_ExactBytes(t *testing.T) {
	tests := []struct {
		name   string
		page   []byte
		size   int
		sha256 string
	}{
		{"target", Target(), 2247, "26196ae5aebb8a103c162c2be26c09be70013b17a0f7c81108d78a8e472596c1"},
		{"default", Default(), 1346, "811c244d09c0a8a1ff35c56ac6b31f95dcb2ccfbeca0bee9f25241705654148d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.page) != tt.size {
				t.Fatalf("expected %d bytes, got %d", tt.size, len(tt.page))
			}
			sum := sha256.Sum256(tt.page)
			if got := hex.EncodeToString(sum[:]); got != tt.sha256 {
				t.Errorf("page bytes changed: sha256 %s", got)
			}
			if !bytes.HasPrefix(tt.page, []byte("\n        <!DOCTYPE html>\n")) {
				t.Errorf("unexpected page start %q", tt.page[:32])
			}
			if !bytes.HasSuffix(tt.page, []byte("</html>\n        ")) {
				t.Errorf("unexpected page end %q", tt.page[len(tt.page)-32:])
			}
		})
	}
}
