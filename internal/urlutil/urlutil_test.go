package urlutil

import (
	"errors"
	"net/url"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "lowercase scheme and host", raw: "HTTP://Example.COM/About", want: "http://example.com/About"},
		{name: "strip default http port", raw: "http://example.com:80/a", want: "http://example.com/a"},
		{name: "strip default https port", raw: "https://example.com:443/a", want: "https://example.com/a"},
		{name: "keep non-default port", raw: "http://example.com:8080/a", want: "http://example.com:8080/a"},
		{name: "strip fragment", raw: "https://example.com/page#section", want: "https://example.com/page"},
		{name: "strip trailing slash", raw: "https://example.com/about/", want: "https://example.com/about"},
		{name: "root keeps slash", raw: "https://example.com/", want: "https://example.com/"},
		{name: "empty path becomes root", raw: "https://example.com", want: "https://example.com/"},
		{name: "collapse duplicate slashes", raw: "https://example.com//a//b", want: "https://example.com/a/b"},
		{name: "resolve dot segments", raw: "https://example.com/a/../b/./c", want: "https://example.com/b/c"},
		{name: "keep query", raw: "https://example.com/search?q=x&p=1", want: "https://example.com/search?q=x&p=1"},
		{name: "surrounding whitespace", raw: "  https://example.com/a  ", want: "https://example.com/a"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw, nil)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got.String(), tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTP://Example.com:80/a/b/../c/#frag",
		"https://example.com//x//y/",
		"https://example.com/search?q=hello",
	}

	for _, raw := range inputs {
		once, err := Normalize(raw, nil)
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", raw, err)
		}
		twice, err := Normalize(once.String(), nil)
		if err != nil {
			t.Fatalf("Normalize(%q) second pass error = %v", once.String(), err)
		}
		if once.String() != twice.String() {
			t.Errorf("normalization not idempotent: %q -> %q -> %q", raw, once.String(), twice.String())
		}
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	t.Parallel()

	a, err := Normalize("http://Example.com:80/a/", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Normalize("http://example.com/a", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("equivalent URLs normalize differently: %q vs %q", a.String(), b.String())
	}
}

func TestNormalizeRelative(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/docs/intro")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "relative path", raw: "guide", want: "https://example.com/docs/guide"},
		{name: "absolute path", raw: "/contact", want: "https://example.com/contact"},
		{name: "parent path", raw: "../about", want: "https://example.com/about"},
		{name: "protocol relative", raw: "//other.example.com/x", want: "https://other.example.com/x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.raw, base)
			if err != nil {
				t.Fatalf("Normalize(%q, base) error = %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("Normalize(%q, base) = %q, want %q", tt.raw, got.String(), tt.want)
			}
		})
	}
}

func TestNormalizeUnsupportedScheme(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"mailto:info@example.com",
		"tel:+15551234567",
		"javascript:void(0)",
		"ftp://example.com/file",
	} {
		if _, err := Normalize(raw, nil); !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnsupportedScheme", raw, err)
		}
	}
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "same host", a: "https://example.com/a", b: "https://example.com/b", want: true},
		{name: "different host", a: "https://example.com/", b: "https://other.com/", want: false},
		{name: "subdomain is different site", a: "https://example.com/", b: "https://blog.example.com/", want: false},
		{name: "case insensitive", a: "https://Example.COM/", b: "https://example.com/", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, err := url.Parse(tt.a)
			if err != nil {
				t.Fatal(err)
			}
			b, err := url.Parse(tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got := SameSite(a, b); got != tt.want {
				t.Errorf("SameSite(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEnsureScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare host", raw: "example.com", want: "https://example.com"},
		{name: "already http", raw: "http://example.com", want: "http://example.com"},
		{name: "already https", raw: "https://example.com", want: "https://example.com"},
		{name: "whitespace", raw: " example.com ", want: "https://example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EnsureScheme(tt.raw); got != tt.want {
				t.Errorf("EnsureScheme(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
