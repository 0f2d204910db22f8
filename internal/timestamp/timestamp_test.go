package timestamp

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"[2024-03-01 Fri 18:30]", time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)},
		{"<2024-03-01 Fri 08:05>", time.Date(2024, 3, 1, 8, 5, 0, 0, time.UTC)},
		{"[2024-03-01 Fri]", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"[2024-03-01]", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"  [2024-03-01 Fr. 18:30:12] ", time.Date(2024, 3, 1, 18, 30, 12, 0, time.UTC)},
		{"[2024-03-01 18:30]", time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"2024-03-01",
		"[2024-13-01 Fri 10:00]",
		"[2024-03-01 Fri 25:00]",
		"[2024-03-01 Fri 10:61]",
		"[2024-03-01 Fri 10:00] trailing",
	} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q): expected error", in)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, ts := range []time.Time{
		time.Date(2021, 12, 24, 9, 15, 0, 0, time.UTC),
		time.Date(2021, 12, 24, 9, 15, 42, 0, time.UTC),
	} {
		back, err := Parse(Format(ts))
		if err != nil {
			t.Fatalf("Parse(Format(%v)): %v", ts, err)
		}
		if !back.Equal(ts) {
			t.Errorf("round trip: got %v, want %v", back, ts)
		}
	}
	if got := Format(time.Date(2021, 12, 24, 9, 15, 0, 0, time.UTC)); got != "[2021-12-24 Fri 09:15]" {
		t.Errorf("Format = %q", got)
	}
}
