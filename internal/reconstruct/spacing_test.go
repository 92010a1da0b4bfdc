package reconstruct

import "testing"

func TestJoin(t *testing.T) {
	tests := []struct {
		name        string
		accumulated string
		fragment    string
		want        string
	}{
		{"empty fragment", "abc", "", ""},
		{"whitespace with leading space", "abc", "   ", " "},
		{"invisible only", "abc", "\u200b", ""},
		{"first fragment", "", "Hello", "Hello"},
		{"leading space stripped at start", "", " Hello", "Hello"},
		{"comma attaches", "word", " ,", ","},
		{"period attaches", "end", ".", "."},
		{"apostrophe attaches", "I", "'", "'"},
		{"closing paren attaches", "(see note", ")", ")"},
		{"space after terminator", "Hello!", "How", " How"},
		{"space after period", "Done.", "next", " next"},
		{"space after comma", "first,", "second", " second"},
		{"space after colon", "Note:", "this", " this"},
		{"no double space", "Hello ", " world", "world"},
		{"lower mid-word join", "hel", "lo", "lo"},
		{"small word keeps space", "cat", "the", " the"},
		{"long halves keep space", "cybersecurity", "assistant", " assistant"},
		{"capital starts new word", "hello", "World", " World"},
		{"acronym continuation", "CV", "e", "e"},
		{"capitalized prev word", "Hello", "world", " world"},
		{"digit then word", "42", "apples", " apples"},
		{"multi word fragment after letter", "Lil", "ly is a cybersecurity assistant", " ly is a cybersecurity assistant"},
		{"digits glue", "CVE-", "2024", "2024"},
		{"bare line break is dropped", "cyber", "\n", ""},
		{"line breaks inside fragment are dropped", "Alert:", "\r\nnew\nscan", " newscan"},
		{"tab is dropped", "word", "\t,", ","},
		{"no-break space is leading space", "word", "\u00a0next", " next"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.accumulated, tt.fragment); got != tt.want {
				t.Errorf("Join(%q, %q) = %q, want %q", tt.accumulated, tt.fragment, got, tt.want)
			}
		})
	}
}
