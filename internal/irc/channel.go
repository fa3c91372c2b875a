package irc

import (
	"sort"
	"strings"
)

// casemapRFC1459 folds a nick or channel name for use as a registry key.
func casemapRFC1459(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'A' <= c && c <= 'Z':
			c += 'a' - 'A'
		case c == '[':
			c = '{'
		case c == ']':
			c = '}'
		case c == '\\':
			c = '|'
		case c == '~':
			c = '^'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// IsChannel reports whether name starts with a channel sigil.
func IsChannel(name string) bool {
	return name != "" && strings.IndexByte(channelSigils, name[0]) >= 0
}

const channelSigils = "#&"

// ChannelUser is a member of one channel.
type ChannelUser struct {
	Nick string
	User string
	Host string

	channel  string // name of the owning channel, used for routing only
	prefixes string // raw prefix symbols, in the order they were gained
	modes    Modes
}

func newChannelUser(channel, nick, user, host, prefixes string) *ChannelUser {
	u := &ChannelUser{Nick: nick, User: user, Host: host, channel: channel}
	u.SetPrefixes(prefixes)
	return u
}

// Channel returns the name of the channel this member belongs to.
func (u *ChannelUser) Channel() string { return u.channel }

// Prefixes returns the raw prefix symbol string.
func (u *ChannelUser) Prefixes() string { return u.prefixes }

// Modes returns the derived privilege flags.
func (u *ChannelUser) Modes() Modes { return u.modes }

// SetPrefixes replaces the member's privileges with the given symbols.
func (u *ChannelUser) SetPrefixes(symbols string) {
	var sb strings.Builder
	for i := 0; i < len(symbols); i++ {
		if _, ok := SymbolToLetter(symbols[i]); ok && strings.IndexByte(sb.String(), symbols[i]) < 0 {
			sb.WriteByte(symbols[i])
		}
	}
	u.prefixes = sb.String()
	u.modes = ModesFromPrefix(u.prefixes)
}

// AddMode grants a privilege letter. Non-privilege letters are ignored.
func (u *ChannelUser) AddMode(letter byte) {
	sym, ok := LetterToSymbol(letter)
	if !ok || strings.IndexByte(u.prefixes, sym) >= 0 {
		return
	}
	u.SetPrefixes(u.prefixes + string(sym))
}

// RemoveMode revokes a privilege letter.
func (u *ChannelUser) RemoveMode(letter byte) {
	sym, ok := LetterToSymbol(letter)
	if !ok {
		return
	}
	u.SetPrefixes(strings.ReplaceAll(u.prefixes, string(sym), ""))
}

// Rank returns the member's highest privilege.
func (u *ChannelUser) Rank() Rank { return u.modes.Rank() }

// IsOwner reports whether the member holds +q.
func (u *ChannelUser) IsOwner() bool { return u.modes.Has(ModeOwner) }

// IsProtected reports whether the member holds +a.
func (u *ChannelUser) IsProtected() bool { return u.modes.Has(ModeProtect) }

// IsOperator reports whether the member holds +o.
func (u *ChannelUser) IsOperator() bool { return u.modes.Has(ModeOperator) }

// IsHalfOperator reports whether the member holds +h.
func (u *ChannelUser) IsHalfOperator() bool { return u.modes.Has(ModeHalfOp) }

// IsVoiced reports whether the member holds +v.
func (u *ChannelUser) IsVoiced() bool { return u.modes.Has(ModeVoice) }

// Channel is a known channel with its members, modes and bans.
type Channel struct {
	Name  string
	Modes Modes

	members map[string]*ChannelUser // casemapped nick -> member
	bans    []string
}

func newChannel(name string) *Channel {
	return &Channel{Name: name, members: map[string]*ChannelUser{}}
}

// User looks up a member by nick, returning nil if absent.
func (c *Channel) User(nick string) *ChannelUser {
	return c.members[casemapRFC1459(nick)]
}

// AddUser returns the member named nick, creating it if needed. An existing
// member keeps its privileges unless prefixes is non-empty.
func (c *Channel) AddUser(nick, user, host, prefixes string) *ChannelUser {
	key := casemapRFC1459(nick)
	if u, ok := c.members[key]; ok {
		if user != "" {
			u.User = user
		}
		if host != "" {
			u.Host = host
		}
		if prefixes != "" {
			u.SetPrefixes(prefixes)
		}
		return u
	}
	u := newChannelUser(c.Name, nick, user, host, prefixes)
	c.members[key] = u
	return u
}

// RemoveUser removes a member and reports whether it was present.
func (c *Channel) RemoveUser(nick string) bool {
	key := casemapRFC1459(nick)
	if _, ok := c.members[key]; !ok {
		return false
	}
	delete(c.members, key)
	return true
}

func (c *Channel) clearUsers() {
	c.members = map[string]*ChannelUser{}
}

func (c *Channel) renameUser(from, to string) bool {
	u := c.members[casemapRFC1459(from)]
	if u == nil {
		return false
	}
	delete(c.members, casemapRFC1459(from))
	u.Nick = to
	c.members[casemapRFC1459(to)] = u
	return true
}

// Users returns the members sorted by nick.
func (c *Channel) Users() []*ChannelUser {
	users := make([]*ChannelUser, 0, len(c.members))
	for _, u := range c.members {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return casemapRFC1459(users[i].Nick) < casemapRFC1459(users[j].Nick)
	})
	return users
}

// Bans returns a copy of the ban list in insertion order.
func (c *Channel) Bans() []string {
	return append([]string(nil), c.bans...)
}

// HasBan reports whether mask is on the ban list.
func (c *Channel) HasBan(mask string) bool {
	for _, b := range c.bans {
		if b == mask {
			return true
		}
	}
	return false
}

// AddBan adds mask to the ban list. Adding a present mask is a no-op.
func (c *Channel) AddBan(mask string) bool {
	if c.HasBan(mask) {
		return false
	}
	c.bans = append(c.bans, mask)
	return true
}

// RemoveBan removes mask from the ban list. Removing an absent mask is a no-op.
func (c *Channel) RemoveBan(mask string) bool {
	for i, b := range c.bans {
		if b == mask {
			c.bans = append(c.bans[:i], c.bans[i+1:]...)
			return true
		}
	}
	return false
}

// Registry holds the channels known to a session.
//
// A Registry is not safe for concurrent use. The session only mutates it on
// the dispatcher goroutine, so listeners may read it freely.
type Registry struct {
	channels map[string]*Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{channels: map[string]*Channel{}}
}

// Channel looks up a channel by name, returning nil if unknown.
func (r *Registry) Channel(name string) *Channel {
	return r.channels[casemapRFC1459(name)]
}

// AddChannel returns the channel named name, creating it if needed.
func (r *Registry) AddChannel(name string) *Channel {
	key := casemapRFC1459(name)
	if c, ok := r.channels[key]; ok {
		return c
	}
	c := newChannel(name)
	r.channels[key] = c
	return c
}

// RemoveChannel forgets a channel and its members. It reports whether the
// channel was known.
func (r *Registry) RemoveChannel(name string) bool {
	key := casemapRFC1459(name)
	if _, ok := r.channels[key]; !ok {
		return false
	}
	delete(r.channels, key)
	return true
}

// Channels returns the known channels sorted by name.
func (r *Registry) Channels() []*Channel {
	channels := make([]*Channel, 0, len(r.channels))
	for _, c := range r.channels {
		channels = append(channels, c)
	}
	sort.Slice(channels, func(i, j int) bool {
		return casemapRFC1459(channels[i].Name) < casemapRFC1459(channels[j].Name)
	})
	return channels
}

// RenameUser renames nick in every channel and returns the affected channels.
func (r *Registry) RenameUser(from, to string) []*Channel {
	var renamed []*Channel
	for _, c := range r.Channels() {
		if c.renameUser(from, to) {
			renamed = append(renamed, c)
		}
	}
	return renamed
}
