package normalize

import "testing"

func TestParseTimestampKeepsWallClockHour(t *testing.T) {
	cases := map[string]int{
		"2023-11-14T09:15:00":           9,
		"2023-11-14T18:59:59.123456":    18,
		"2023-11-14T10:00:00+05:00":     10,
		"2023-11-14T10:00:00Z":          10,
		"2023-11-14 12:30":              12,
		"2023-11-14T07:45":              7,
		"2023-11-14":                    0,
		"2023-11-14T11:22:33.000+01:00": 11,
	}
	for in, hour := range cases {
		ts, err := ParseTimestamp(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if ts.Hour() != hour {
			t.Fatalf("parse %q: hour %d want %d", in, ts.Hour(), hour)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "14/11/2023 10:00", "2023-13-01T10:00:00"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestParseSite(t *testing.T) {
	if n, err := ParseSite("3"); err != nil || n != 3 {
		t.Fatalf("site 3: %d %v", n, err)
	}
	for _, in := range []string{"", "-1", "1.5", " 2", "abc"} {
		if _, err := ParseSite(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
