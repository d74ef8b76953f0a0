package whois

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input string
		valid bool
		text  string
		isIP  bool
	}{
		{"magiclen.org", true, "magiclen.org", false},
		{"sub.example.co.uk", true, "sub.example.co.uk", false},
		{"Example.COM", true, "example.com", false},
		{"example.com.", true, "example.com", false},
		{"  example.com  ", true, "example.com", false},
		{"8.8.8.8", true, "8.8.8.8", true},
		{"2001:4860:4860::8888", true, "2001:4860:4860::8888", true},
		{"中文.tw", true, "中文.tw", false},
		{"example.xn--p1ai", true, "example.xn--p1ai", false},
		{"中文.中国", true, "中文.中国", false},
		{"президент.рф", true, "президент.рф", false},
		{"", false, "", false},
		{"example", false, "", false},
		{"-example.com", false, "", false},
		{"example-.com", false, "", false},
		{"example..com", false, "", false},
		{"exa mple.com", false, "", false},
	}

	for _, test := range tests {
		target, err := ParseTarget(test.input)
		if test.valid {
			if err != nil {
				t.Errorf("ParseTarget(%q) returned error: %v", test.input, err)
				continue
			}
			if target.String() != test.text {
				t.Errorf("ParseTarget(%q).String() = %q; want %q", test.input, target.String(), test.text)
			}
			if target.IsIP() != test.isIP {
				t.Errorf("ParseTarget(%q).IsIP() = %v; want %v", test.input, target.IsIP(), test.isIP)
			}
		} else if err != ErrInvalidTarget {
			t.Errorf("ParseTarget(%q) = %v; want ErrInvalidTarget", test.input, err)
		}
	}
}

func TestTargetLabels(t *testing.T) {
	target, err := ParseTarget("a.b.org")
	if err != nil {
		t.Fatalf("ParseTarget: %v", err)
	}

	labels := target.Labels()
	want := []string{"a", "b", "org"}
	if len(labels) != len(want) {
		t.Fatalf("Labels() = %v; want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("Labels() = %v; want %v", labels, want)
		}
	}

	ip, _ := ParseTarget("8.8.8.8")
	if ip.Labels() != nil {
		t.Errorf("Labels() for IP target = %v; want nil", ip.Labels())
	}
}
