package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "SingleLiteral",
			content: "BT /F1 12 Tf (Hello billing@acme.com) Tj ET",
			want:    "Hello billing@acme.com",
		},
		{
			name:    "MultipleLiterals",
			content: "(Invoice for) Tj (ops@carrier.io) Tj",
			want:    "Invoice for ops@carrier.io",
		},
		{
			name:    "EscapedParens",
			content: `(pay \(now\) via zelle) Tj`,
			want:    "pay (now) via zelle",
		},
		{
			name:    "EscapedNewline",
			content: `(line one\nline two) Tj`,
			want:    "line one line two",
		},
		{
			name:    "NoLiterals",
			content: "BT /F1 12 Tf ET",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textFromContentStream([]byte(tt.content)); got != tt.want {
				t.Errorf("textFromContentStream() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmailPattern(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"contact billing@acme.com for details", []string{"billing@acme.com"}},
		{"a@b.co and c.d+x@e-f.org", []string{"a@b.co", "c.d+x@e-f.org"}},
		{"no address here", nil},
		{"bad@domain", nil},
		{"short@tld.a", nil},
	}

	for _, tt := range tests {
		got := emailPattern.FindAllString(tt.text, -1)
		if len(got) != len(tt.want) {
			t.Errorf("FindAllString(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("FindAllString(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestEmailUnreadableDocument(t *testing.T) {
	e := New("info@tsst.ai")

	t.Run("MissingFile", func(t *testing.T) {
		if _, ok := e.Email(filepath.Join(t.TempDir(), "absent.pdf")); ok {
			t.Error("Email() on a missing file reported success")
		}
	})

	t.Run("NotAPDF", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.pdf")
		if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, ok := e.Email(path); ok {
			t.Error("Email() on a non-PDF file reported success")
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.pdf")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		if _, ok := e.Email(path); ok {
			t.Error("Email() on an empty file reported success")
		}
	})
}

func TestFirstEmail(t *testing.T) {
	e := New("Info@TSST.ai")

	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "SkipsExcludedCaseInsensitively",
			text: "From: INFO@tsst.AI To: client@carrier.com",
			want: "client@carrier.com",
			ok:   true,
		},
		{
			name: "OnlyExcludedYieldsNothing",
			text: "From: info@tsst.ai CC: INFO@TSST.AI",
			ok:   false,
		},
		{
			name: "FirstOfSeveral",
			text: "a@b.com then c@d.com",
			want: "a@b.com",
			ok:   true,
		},
		{
			name: "NoAddresses",
			text: "nothing to see",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.firstEmail(tt.text)
			if got != tt.want || ok != tt.ok {
				t.Errorf("firstEmail(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}
