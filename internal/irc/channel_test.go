package irc

import "testing"

func TestBanListIdempotent(t *testing.T) {
	ch := newChannel("#chan")

	if !ch.AddBan("bob!*@*") {
		t.Fatal("first AddBan should report a change")
	}
	if ch.AddBan("bob!*@*") {
		t.Error("second AddBan should be a no-op")
	}
	if got := ch.Bans(); len(got) != 1 || got[0] != "bob!*@*" {
		t.Errorf("Expected one ban, got %v", got)
	}

	if ch.RemoveBan("nobody!*@*") {
		t.Error("removing an absent mask should be a no-op")
	}
	if !ch.RemoveBan("bob!*@*") || len(ch.Bans()) != 0 {
		t.Errorf("ban not removed: %v", ch.Bans())
	}
}

func TestChannelUsersCasemapped(t *testing.T) {
	reg := NewRegistry()
	ch := reg.AddChannel("#Chan")
	if reg.AddChannel("#chan") != ch {
		t.Fatal("channel names should be case-insensitive")
	}

	u := ch.AddUser("Bob[1]", "b", "host", "@")
	if ch.User("bob{1}") != u {
		t.Error("nick lookup should follow rfc1459 casemapping")
	}
	if !u.IsOperator() || u.Rank() != RankOperator {
		t.Errorf("Expected operator, got %s", u.Rank())
	}
	if u.Channel() != "#Chan" {
		t.Errorf("Expected back-reference #Chan, got %q", u.Channel())
	}

	// re-adding without prefixes keeps privileges
	ch.AddUser("bob[1]", "", "", "")
	if !u.IsOperator() {
		t.Error("privileges lost on re-add")
	}

	if !ch.RemoveUser("BOB[1]") || ch.User("bob[1]") != nil {
		t.Error("user not removed")
	}
}

func TestRegistryRenameUser(t *testing.T) {
	reg := NewRegistry()
	a := reg.AddChannel("#a")
	b := reg.AddChannel("#b")
	reg.AddChannel("#c")
	a.AddUser("bob", "b", "h", "+")
	b.AddUser("bob", "b", "h", "")

	renamed := reg.RenameUser("bob", "robert")
	if len(renamed) != 2 || renamed[0] != a || renamed[1] != b {
		t.Fatalf("Expected #a and #b renamed, got %d channels", len(renamed))
	}
	u := a.User("robert")
	if u == nil || u.Nick != "robert" || !u.IsVoiced() {
		t.Errorf("rename lost member state: %+v", u)
	}
	if a.User("bob") != nil {
		t.Error("old nick still present")
	}
}

func TestRegistryChannelsSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"#zeta", "#Alpha", "#mid"} {
		reg.AddChannel(name)
	}
	var names []string
	for _, c := range reg.Channels() {
		names = append(names, c.Name)
	}
	if len(names) != 3 || names[0] != "#Alpha" || names[1] != "#mid" || names[2] != "#zeta" {
		t.Errorf("unexpected order: %v", names)
	}
	if !reg.RemoveChannel("#MID") || reg.Channel("#mid") != nil {
		t.Error("channel not removed")
	}
}
