package keymask

import "testing"

func TestShift(t *testing.T) {
	cases := []struct {
		passphrase string
		want       int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 6},
		{"ABC", 6},
		{"a1b2c3", 6},
		{"z", 26},
		{"Zz", 52},
		{"!!??", 0},
	}
	for _, c := range cases {
		if got := Shift(c.passphrase); got != c.want {
			t.Fatalf("Shift(%q) = %d, want %d", c.passphrase, got, c.want)
		}
	}
}

func TestMaskUnmaskRoundTrip(t *testing.T) {
	keys := []string{"00", "00ff", "deadbeef", "0123456789abcdef", ""}
	for _, key := range keys {
		masked, err := Mask(key, "secret phrase")
		if err != nil {
			t.Fatalf("Mask(%q) error: %v", key, err)
		}
		plain, err := Unmask(masked, "secret phrase")
		if err != nil {
			t.Fatalf("Unmask(%q) error: %v", masked, err)
		}
		if plain != key {
			t.Fatalf("round trip of %q = %q", key, plain)
		}
	}
}

func TestMaskKnownVector(t *testing.T) {
	// shift("abc") = 6; 0x00+6 = 0x06, 0xff+6 wraps to 0x05.
	masked, err := Mask("00ff", "abc")
	if err != nil {
		t.Fatalf("Mask error: %v", err)
	}
	if masked != "0605" {
		t.Fatalf("Mask(00ff, abc) = %q, want 0605", masked)
	}
}

func TestUnmaskWrongPassphraseDiffers(t *testing.T) {
	masked, err := Mask("deadbeef", "right")
	if err != nil {
		t.Fatalf("Mask error: %v", err)
	}
	plain, err := Unmask(masked, "wrong")
	if err != nil {
		t.Fatalf("Unmask error: %v", err)
	}
	if plain == "deadbeef" {
		t.Fatalf("wrong passphrase should not recover the key")
	}
}

func TestUnmaskRejectsBadInput(t *testing.T) {
	if _, err := Unmask("abc", "p"); err == nil {
		t.Fatalf("expected error for odd-length input")
	}
	if _, err := Unmask("zz", "p"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
}
