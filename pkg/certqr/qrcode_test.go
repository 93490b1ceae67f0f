package certqr

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"SVG", FormatSVG, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodePNG(t *testing.T) {
	out, err := Encode("https://educhain.app/verify/CERT-1", FormatPNG, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Errorf("output is not a png")
	}
}

func TestEncodeSVG(t *testing.T) {
	out, err := Encode("https://educhain.app/verify/CERT-1", FormatSVG, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(string(out), "<svg") {
		t.Errorf("output is not an svg")
	}
	if FormatSVG.ContentType() != "image/svg+xml" {
		t.Errorf("unexpected content type %q", FormatSVG.ContentType())
	}
}

func TestEncodeRejectsEmptyLink(t *testing.T) {
	if _, err := Encode("", FormatPNG, 0); err == nil {
		t.Errorf("expected error for empty link")
	}
}
