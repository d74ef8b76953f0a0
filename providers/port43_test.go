package providers

import (
	"testing"
)

const sampleRecord = `Domain Name: EXAMPLE.ORG
Registry Domain ID: D1234567-LROR
Registrar WHOIS Server: whois.example-registrar.net
Registrar: Example Registrar LLC
Updated Date: 2024-05-20T04:00:00Z
Creation Date: 2000-08-14T04:00:00Z
Registry Expiry Date: 2030-08-14T04:00:00Z
Domain Status: clientDeleteProhibited
Domain Status: clientTransferProhibited
Name Server: NS1.EXAMPLE.ORG
Name Server: NS2.EXAMPLE.ORG
Registrant Email: hostmaster@example.org
>>> Last update of WHOIS database: 2025-08-01T00:00:00Z <<<
`

func TestParseWhoisText(t *testing.T) {
	response := parseWhoisText(sampleRecord, "example.org")

	if response.Available {
		t.Error("registered domain reported as available")
	}
	if response.Registrar != "Example Registrar LLC" {
		t.Errorf("Registrar = %q", response.Registrar)
	}
	if response.WhoisServer != "whois.example-registrar.net" {
		t.Errorf("WhoisServer = %q", response.WhoisServer)
	}
	if response.CreateDate != "2000-08-14" {
		t.Errorf("CreateDate = %q; want 2000-08-14", response.CreateDate)
	}
	if response.ExpiryDate != "2030-08-14" {
		t.Errorf("ExpiryDate = %q; want 2030-08-14", response.ExpiryDate)
	}
	if response.UpdateDate != "2024-05-20" {
		t.Errorf("UpdateDate = %q; want 2024-05-20", response.UpdateDate)
	}
	if len(response.Status) != 2 {
		t.Errorf("Status = %v; want 2 entries", response.Status)
	}
	if len(response.NameServers) != 2 {
		t.Errorf("NameServers = %v; want 2 entries", response.NameServers)
	}
	if response.ContactEmail != "hostmaster@example.org" {
		t.Errorf("ContactEmail = %q", response.ContactEmail)
	}
	if response.DomainAge <= 0 {
		t.Errorf("DomainAge = %d; want positive", response.DomainAge)
	}
}

func TestParseWhoisTextAvailable(t *testing.T) {
	response := parseWhoisText("No match for domain \"FREE-EXAMPLE.COM\".\r\n", "free-example.com")
	if !response.Available {
		t.Error("unregistered domain not reported as available")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2000-08-14T04:00:00Z", "2000-08-14"},
		{"2000-08-14 04:00:00", "2000-08-14"},
		{"14-Aug-2000", "2000-08-14"},
		{"2000.08.14", "2000-08-14"},
		{"2000-08-14 (JST)", "2000-08-14"},
		{"someday soon", "someday soon"},
		{"", ""},
	}

	for _, test := range tests {
		if got := parseDate(test.input); got != test.want {
			t.Errorf("parseDate(%q) = %q; want %q", test.input, got, test.want)
		}
	}
}
