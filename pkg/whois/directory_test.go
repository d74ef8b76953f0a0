package whois

import (
	"errors"
	"testing"
)

// 与spec示例一致的小目录
const testDirectory = `{
	"org": {"host": "whois.pir.org"},
	"": {"host": "whois.ripe.net"},
	"_": {"ip": {"host": "whois.arin.net", "query": "n + $addr\r\n"}}
}`

func mustTarget(t *testing.T, raw string) Target {
	t.Helper()
	target, err := ParseTarget(raw)
	if err != nil {
		t.Fatalf("ParseTarget(%q): %v", raw, err)
	}
	return target
}

func TestDirectoryResolve(t *testing.T) {
	d, err := DirectoryFromString(testDirectory)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	tests := []struct {
		target string
		host   string
	}{
		{"magiclen.org", "whois.pir.org"},
		{"a.b.org", "whois.pir.org"},
		{"example.net", "whois.ripe.net"},
		{"8.8.8.8", "whois.arin.net"},
	}

	for _, test := range tests {
		server, err := d.Resolve(mustTarget(t, test.target))
		if err != nil {
			t.Errorf("Resolve(%q) returned error: %v", test.target, err)
			continue
		}
		if server.Host != test.host {
			t.Errorf("Resolve(%q).Host = %q; want %q", test.target, server.Host, test.host)
		}
	}
}

// 更长的后缀条目优先于更短的后缀和默认回退
func TestDirectoryLongestSuffixWins(t *testing.T) {
	d, err := DirectoryFromString(`{
		"org": "whois.pir.org",
		"b.org": "whois.specific.example",
		"": "whois.ripe.net",
		"_": {"ip": "whois.arin.net"}
	}`)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	server, err := d.Resolve(mustTarget(t, "a.b.org"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if server.Host != "whois.specific.example" {
		t.Errorf("Resolve(a.b.org).Host = %q; want whois.specific.example", server.Host)
	}

	server, err = d.Resolve(mustTarget(t, "c.org"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if server.Host != "whois.pir.org" {
		t.Errorf("Resolve(c.org).Host = %q; want whois.pir.org", server.Host)
	}
}

func TestDirectoryNoServer(t *testing.T) {
	// 无默认回退、无IP条目
	d, err := DirectoryFromString(`{"org": "whois.pir.org"}`)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	if _, err := d.Resolve(mustTarget(t, "example.net")); err != ErrNoServer {
		t.Errorf("Resolve(example.net) = %v; want ErrNoServer", err)
	}
	if _, err := d.Resolve(mustTarget(t, "8.8.8.8")); err != ErrNoServer {
		t.Errorf("Resolve(8.8.8.8) = %v; want ErrNoServer", err)
	}
}

func TestDirectoryKeyNormalization(t *testing.T) {
	d, err := DirectoryFromString(`{"ORG": "whois.pir.org"}`)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}
	server, err := d.Resolve(mustTarget(t, "magiclen.org"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if server.Host != "whois.pir.org" {
		t.Errorf("Resolve(magiclen.org).Host = %q; want whois.pir.org", server.Host)
	}

	// 规范化后重复的键在构造时报错
	if _, err := DirectoryFromString(`{"ORG": "a.example", "org": "b.example"}`); err == nil {
		t.Error("duplicate keys after normalization should fail construction")
	}
}

func TestDirectoryMalformed(t *testing.T) {
	inputs := []string{
		`not json`,
		`{"org": 42}`,
		`{"org": {"host": ""}}`,
		`{"org": {"host": "has space.example"}}`,
		`{"_": "not an object"}`,
	}

	for _, input := range inputs {
		_, err := DirectoryFromString(input)
		var dirErr *DirectoryError
		if !errors.As(err, &dirErr) {
			t.Errorf("DirectoryFromString(%q) = %v; want *DirectoryError", input, err)
		}
	}
}

// null条目表示该后缀没有可用的WHOIS服务器，跳过而不是报错
func TestDirectoryNullEntries(t *testing.T) {
	d, err := DirectoryFromString(`{"onion": null, "": "whois.ripe.net", "_": {"ip": null}}`)
	if err != nil {
		t.Fatalf("DirectoryFromString: %v", err)
	}

	server, err := d.Resolve(mustTarget(t, "example.onion"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if server.Host != "whois.ripe.net" {
		t.Errorf("null entry should fall back to default, got %q", server.Host)
	}

	if _, err := d.Resolve(mustTarget(t, "8.8.8.8")); err != ErrNoServer {
		t.Errorf("null ip entry: Resolve = %v; want ErrNoServer", err)
	}
}

func TestDefaultDirectory(t *testing.T) {
	d := DefaultDirectory()
	if d.Len() == 0 {
		t.Fatal("DefaultDirectory returned empty directory")
	}

	server, err := d.Resolve(mustTarget(t, "magiclen.org"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if server.Host != "whois.pir.org" {
		t.Errorf("Resolve(magiclen.org).Host = %q; want whois.pir.org", server.Host)
	}

	if _, err := d.Resolve(mustTarget(t, "8.8.8.8")); err != nil {
		t.Errorf("builtin directory has no ip entry: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		addr string
	}{
		{"whois.pir.org", "whois.pir.org:43"},
		{"whois.example.net:4343", "whois.example.net:4343"},
		{"192.0.2.10", "192.0.2.10:43"},
		{"2001:db8::1", "[2001:db8::1]:43"},
		{"[2001:db8::1]:4343", "[2001:db8::1]:4343"},
	}

	for _, test := range tests {
		s := &Server{Host: test.host}
		if got := s.addr(); got != test.addr {
			t.Errorf("addr(%q) = %q; want %q", test.host, got, test.addr)
		}
	}
}
