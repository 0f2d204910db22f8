package catalog

import "testing"

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name, body, query string
		want              string
	}{
		{"whole body", "a short note", "short", "a <b>short</b> note"},
		{"case kept", "Go and go", "GO", "<b>Go</b> and ..."},
		{"clipped both sides", "0123456789 needle 0123456789", "needle", "...6789 <b>needle</b> 0123..."},
		{"no occurrence", "0123456789abcdefghij", "title", "0123456789..."},
		{"whitespace folded", "line one\n\nline   two", "one line", "line <b>one line</b> two"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := excerpt(tc.body, tc.query, 5); got != tc.want {
				t.Errorf("excerpt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExcerpt_RuneBoundary(t *testing.T) {
	got := excerpt("äääää x", "x", 2)
	if got != "...ä <b>x</b>" {
		t.Errorf("excerpt = %q", got)
	}
}
