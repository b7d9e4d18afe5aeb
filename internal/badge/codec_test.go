package badge

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	c, err := NewCodec("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	code, err := c.Encode(42, 7)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(code) < minCodeLength {
		t.Errorf("code %q shorter than %d", code, minCodeLength)
	}

	userID, conferenceID, err := c.Decode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if userID != 42 || conferenceID != 7 {
		t.Errorf("got (%d, %d), want (42, 7)", userID, conferenceID)
	}
}

func TestCodecDeterministic(t *testing.T) {
	c, _ := NewCodec("test-salt")
	a, _ := c.Encode(1, 2)
	b, _ := c.Encode(1, 2)
	if a != b {
		t.Errorf("same pair produced %q and %q", a, b)
	}
}

func TestCodecSaltChangesCode(t *testing.T) {
	c1, _ := NewCodec("salt-one")
	c2, _ := NewCodec("salt-two")
	a, _ := c1.Encode(1, 2)
	b, _ := c2.Encode(1, 2)
	if a == b {
		t.Error("different salts produced identical codes")
	}
}

func TestDecodeGarbage(t *testing.T) {
	c, _ := NewCodec("test-salt")
	for _, code := range []string{"", "!!!", "abc"} {
		if _, _, err := c.Decode(code); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", code)
		}
	}
}

func TestPNG(t *testing.T) {
	png, err := PNG("sOmEcOdE1234", 128)
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
