package instrumentation

import "testing"

func TestExtractRecipientDomains(t *testing.T) {
	tests := []struct {
		list     string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"a@x.com; B@Y.com, c@x.com", "x.com,y.com"},
		{"Jane Doe <jane@Example.com>", "example.com"},
		{"invalid", "unknown"},
		{"bob@example.com; invalid", "example.com,unknown"},
		{"user@", "unknown"},
		{"", ""},
		{" ; , ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			if got := ExtractRecipientDomains(tt.list); got != tt.expected {
				t.Errorf("ExtractRecipientDomains(%q) = %q, want %q", tt.list, got, tt.expected)
			}
		})
	}
}
