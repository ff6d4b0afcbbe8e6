package ingest

import "testing"

func TestDecodeRating(t *testing.T) {
	raw, err := Decode([]byte(`{"at": "2023-11-14T10:00:00", "site": "3", "val": 4}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.At == nil || *raw.At != "2023-11-14T10:00:00" {
		t.Fatalf("at: %v", raw.At)
	}
	if raw.Site == nil || *raw.Site != "3" || raw.Val == nil || *raw.Val != 4 {
		t.Fatalf("site/val mismatch")
	}
	if raw.Type != nil {
		t.Fatalf("type should be absent")
	}
	if raw.Payload == "" {
		t.Fatalf("payload not kept")
	}
}

func TestDecodeNullIsAbsent(t *testing.T) {
	raw, err := Decode([]byte(`{"at":"2023-11-14T10:00:00","site":"1","val":-1,"type":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.Type != nil {
		t.Fatalf("null type should decode as absent")
	}
}

func TestDecodeMissingKeysIsNotAnError(t *testing.T) {
	raw, err := Decode([]byte(`{"at":"2023-11-14T10:00:00","site":"1"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.Val != nil {
		t.Fatalf("val should be absent")
	}
}

func TestDecodeFailures(t *testing.T) {
	for _, payload := range []string{
		``,
		`not json`,
		`[1,2,3]`,
		`{"at":"2023-11-14T10:00:00","site":3,"val":4}`,
		`{"at":"2023-11-14T10:00:00","site":"3","val":"4"}`,
		`{"at":"2023-11-14T10:00:00","site":"3","val":2.5}`,
		`{"at":"2023-11-14T10:00:00"`,
		`{"val":1} {"val":2}`,
	} {
		if _, err := Decode([]byte(payload)); err == nil {
			t.Fatalf("expected decode error for %q", payload)
		}
	}
}

func TestDecodeKeysAreCaseSensitive(t *testing.T) {
	raw, err := Decode([]byte(`{"AT":"2023-11-14T10:00:00","Site":"3","VAL":4}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.At != nil || raw.Site != nil || raw.Val != nil {
		t.Fatalf("case variants must not fill fields: %+v", raw)
	}

	raw, err = Decode([]byte(`{"at":"2023-11-14T10:00:00","AT":"2023-11-14T03:00:00","site":"3","val":4}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.At == nil || *raw.At != "2023-11-14T10:00:00" {
		t.Fatalf("at: %v", raw.At)
	}
}

func TestDecodeKeepsTypeRaw(t *testing.T) {
	for _, typ := range []string{`"x"`, `1.0`, `"1"`, `[1]`} {
		raw, err := Decode([]byte(`{"at":"2023-11-14T10:00:00","site":"3","val":-1,"type":` + typ + `}`))
		if err != nil {
			t.Fatalf("type %s: %v", typ, err)
		}
		if string(raw.Type) != typ {
			t.Fatalf("type kept as %s want %s", raw.Type, typ)
		}
	}
}
