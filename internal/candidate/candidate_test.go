package candidate

import "testing"

func TestParseAnonymity(t *testing.T) {
	cases := map[string]Anonymity{
		"高匿代理":  Elite,
		"普通代理":  Anonymous,
		"透明代理":  Transparent,
		"unknown": Transparent,
	}
	for raw, want := range cases {
		if got := ParseAnonymity(raw); got != want {
			t.Errorf("ParseAnonymity(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseScheme(t *testing.T) {
	cases := map[string]Scheme{
		"HTTPS": HTTPS,
		"https": HTTPS,
		"HTTP":  HTTP,
		"":      HTTP,
	}
	for raw, want := range cases {
		if got := ParseScheme(raw); got != want {
			t.Errorf("ParseScheme(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("not-an-ip", "80", "", ""); err == nil {
		t.Fatal("expected error for non-dotted-quad IP")
	}
	if _, err := New("1.2.3.4", "0", "", ""); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	if _, err := New("1.2.3.4", "70000", "", ""); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	if _, err := New("2001:db8::1", "80", "", ""); err == nil {
		t.Fatal("expected error for IPv6 address")
	}
}

func TestKeyStability(t *testing.T) {
	a, err := New("1.2.3.4", "80", "高匿", "HTTPS")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New("1.2.3.4", "80", "普通", "HTTP")
	if err != nil {
		t.Fatal(err)
	}
	if a.Key() != b.Key() {
		t.Fatalf("expected identical endpoint keys regardless of anonymity/scheme, got %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "1.2.3.4:80" {
		t.Fatalf("unexpected key form: %q", a.Key())
	}
}
