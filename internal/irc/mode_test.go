package irc

import "testing"

func TestParseModes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+ov", "+ov"},
		{"+ov-o", "+v"},
		{"ov", "+ov"},
		{"+nt-n+mb-b", "+mt"},
		{"-o", ""},
		{"", ""},
		{"+vqo", "+qov"},
	}
	for _, tt := range tests {
		if got := ParseModes(tt.in).String(); got != tt.want {
			t.Errorf("ParseModes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModesRoundTrip(t *testing.T) {
	for _, s := range []string{"+ov-b", "+qaohv", "-v+h", "+ntk", "+b-b+l", "+"} {
		m := ParseModes(s)
		if again := ParseModes(m.String()); again != m {
			t.Errorf("round trip of %q: %q activates %q", s, m.String(), again.String())
		}
	}
}

func TestLetterSymbolBijection(t *testing.T) {
	pairs := map[byte]byte{'q': '~', 'a': '&', 'o': '@', 'h': '%', 'v': '+'}
	for letter, sym := range pairs {
		got, ok := LetterToSymbol(letter)
		if !ok || got != sym {
			t.Errorf("LetterToSymbol(%c) = %c, %v", letter, got, ok)
		}
		back, ok := SymbolToLetter(sym)
		if !ok || back != letter {
			t.Errorf("SymbolToLetter(%c) = %c, %v", sym, back, ok)
		}
	}
	if _, ok := LetterToSymbol('b'); ok {
		t.Error("ban letter should have no symbol")
	}
}

func TestRankPrecedence(t *testing.T) {
	tests := []struct {
		modes string
		want  Rank
	}{
		{"", RankNone},
		{"+v", RankVoice},
		{"+vo", RankOperator},
		{"+hv", RankHalfOperator},
		{"+aov", RankProtect},
		{"+qaohv", RankOwner},
		{"+nt", RankNone},
	}
	for _, tt := range tests {
		if got := ParseModes(tt.modes).Rank(); got != tt.want {
			t.Errorf("Rank(%q) = %s, want %s", tt.modes, got, tt.want)
		}
	}
	if RankOperator.String() != "operator" || RankNone.String() != "none" {
		t.Errorf("unexpected rank names %q %q", RankOperator, RankNone)
	}
}

func TestModesFromPrefix(t *testing.T) {
	m := ModesFromPrefix("@+x")
	if !m.Has(ModeOperator) || !m.Has(ModeVoice) || m.Has('x') {
		t.Errorf("ModesFromPrefix(@+x) = %q", m.String())
	}
	if m.Prefix() != "@+" {
		t.Errorf("Prefix() = %q, want %q", m.Prefix(), "@+")
	}
}

func TestAddRemoveModeRestores(t *testing.T) {
	for _, start := range []string{"", "+", "@", "~%"} {
		for _, letter := range []byte("qaohv") {
			u := newChannelUser("#chan", "bob", "b", "host", start)
			if u.Modes().Has(letter) {
				continue
			}
			before, rank := u.Modes(), u.Rank()
			u.AddMode(letter)
			if !u.Modes().Has(letter) {
				t.Fatalf("start %q: +%c not applied", start, letter)
			}
			u.RemoveMode(letter)
			if u.Modes() != before || u.Rank() != rank {
				t.Errorf("start %q: +%c-%c left %q rank %s", start, letter, letter, u.Modes().String(), u.Rank())
			}
		}
	}
}
