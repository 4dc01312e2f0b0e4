package sandbox

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"", "''"},
		{"two words", "'two words'"},
		{"it's", `'it'\''s'`},
		{"'; rm -rf /", `''\''; rm -rf /'`},
		{"$HOME `id`", "'$HOME `id`'"},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBashCommand(t *testing.T) {
	got := bashCommand(`echo 'hi'`)
	want := `bash -lc 'echo '\''hi'\'''`
	if got != want {
		t.Errorf("bashCommand = %s, want %s", got, want)
	}
}

func TestExtractReply(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"marker present", "npm noise\n" + ResponseMarker + "\n the reply \n", "the reply"},
		{"last marker wins", ResponseMarker + "first\nmore\n" + ResponseMarker + "second", "second"},
		{"no marker", "  raw output  ", "raw output"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractReply(tt.output); got != tt.want {
				t.Errorf("ExtractReply(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}
