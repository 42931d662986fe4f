package wiktionary

import "testing"

func TestFixWhitespace(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "plain text unchanged", in: "river bank", want: "river bank", wantOK: true},
		{name: "empty string", in: "", want: "", wantOK: true},
		{name: "tab replaced", in: "river\tbank", want: "river bank", wantOK: false},
		{name: "text after newline dropped", in: "bank\n<!-- check -->", want: "bank", wantOK: false},
		{name: "carriage return dropped", in: "bank\r\nmore", want: "bank", wantOK: false},
		{name: "both", in: "a\tb\nc\td", want: "a b", wantOK: false},
		{name: "unicode preserved", in: "bergé", want: "bergé", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FixWhitespace(tt.in)
			if got != tt.want {
				t.Errorf("FixWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if ok != tt.wantOK {
				t.Errorf("FixWhitespace(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
		})
	}
}
