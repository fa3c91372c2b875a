package irc

import "testing"

func mustParse(t *testing.T, line string) *RawMessage {
	t.Helper()
	raw, err := ParseRawMessage(line)
	if err != nil {
		t.Fatalf("ParseRawMessage(%q): %v", line, err)
	}
	return raw
}

func TestParseRawMessage(t *testing.T) {
	raw := mustParse(t, ":alice!a@example.org PRIVMSG #chan :hello there\r\n")
	if raw.Sender != "alice" || raw.Command != "PRIVMSG" {
		t.Errorf("sender=%q command=%q", raw.Sender, raw.Command)
	}
	if raw.Line != "alice!a@example.org PRIVMSG #chan :hello there" {
		t.Errorf("leading ':' not stripped: %q", raw.Line)
	}
	if raw.Param(0) != "#chan" || raw.Trailing() != "hello there" || raw.Param(5) != "" {
		t.Errorf("unexpected params %q", raw.Params)
	}
	if user, host := raw.UserHost(); user != "a" || host != "example.org" {
		t.Errorf("userhost = %q@%q", user, host)
	}

	if _, err := ParseRawMessage(""); err == nil {
		t.Error("empty line should not parse")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		autoRejoin bool
		kind       Kind
		target     string
		text       string
	}{
		{"version request", ":bob!b@h PRIVMSG me :\x01VERSION\x01", false, KindCTCPVersion, "me", "\x01VERSION\x01"},
		{"version reply is a notice", ":bob!b@h NOTICE me :\x01VERSION x 1.0\x01", false, KindNotice, "me", "\x01VERSION x 1.0\x01"},
		{"server ping", "PING :irc.example.net", false, KindPing, "", "irc.example.net"},
		{"ping as payload", ":bob!b@h PRIVMSG #chan :PING me", false, KindPrivmsg, "#chan", "PING me"},
		{"kick self with rejoin", ":op!o@h KICK #chan me :bye", true, KindKick, "#chan", "bye"},
		{"kick self without rejoin", ":op!o@h KICK #chan me :bye", false, KindRaw, "#chan", "bye"},
		{"kick other", ":op!o@h KICK #chan bob :bye", true, KindRaw, "#chan", "bye"},
		{"kick self casemapped", ":op!o@h KICK #chan ME", true, KindKick, "#chan", ""},
		{"notice", ":irc.example.net NOTICE * :*** Looking up your hostname", false, KindNotice, "*", "*** Looking up your hostname"},
		{"privmsg mentioning notice", ":bob!b@h PRIVMSG #chan :this NOTICE is text", false, KindPrivmsg, "#chan", "this NOTICE is text"},
		{"mode", ":alice!a@h MODE #chan +o bob", false, KindRaw, "#chan", "bob"},
		{"numeric", ":irc.example.net 001 me :Welcome", false, KindRaw, "", "Welcome"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Classify(mustParse(t, tt.line), "me", tt.autoRejoin)
			if m.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", m.Kind, tt.kind)
			}
			if m.Target != tt.target {
				t.Errorf("target = %q, want %q", m.Target, tt.target)
			}
			if m.Text != tt.text {
				t.Errorf("text = %q, want %q", m.Text, tt.text)
			}
		})
	}
}

func TestCTCP(t *testing.T) {
	if got := CTCP("ACTION", "waves"); got != "\x01ACTION waves\x01" {
		t.Errorf("CTCP = %q", got)
	}
	verb, args := splitCTCP("\x01version  \x01")
	if verb != "VERSION" || args != " " {
		t.Errorf("splitCTCP = %q %q", verb, args)
	}
	if verb, _ := splitCTCP("VERSION"); verb != "" {
		t.Error("plain text is not CTCP")
	}
}
