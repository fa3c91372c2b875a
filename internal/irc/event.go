package irc

// EventKind tags the events a dispatcher delivers.
type EventKind int

const (
	// EventPrivmsg is a PRIVMSG, including CTCP requests.
	EventPrivmsg EventKind = iota
	// EventNotice is a NOTICE.
	EventNotice
	// EventRaw is any line not classified as something more specific.
	EventRaw
	// EventChannelModeChanged is a channel mode or ban list change.
	EventChannelModeChanged
	// EventUserModeChanged is a member privilege change.
	EventUserModeChanged
	// EventUserJoined is a JOIN, including our own.
	EventUserJoined
	// EventUserParted is a PART, including our own.
	EventUserParted
	// EventUserKicked is a KICK, including our own.
	EventUserKicked
	// EventUserQuit is a QUIT, delivered once per shared channel.
	EventUserQuit
	// EventNickChanged is a NICK.
	EventNickChanged
)

var eventKindNames = [...]string{
	EventPrivmsg:            "privmsg",
	EventNotice:             "notice",
	EventRaw:                "raw",
	EventChannelModeChanged: "channel-mode-changed",
	EventUserModeChanged:    "user-mode-changed",
	EventUserJoined:         "user-joined",
	EventUserParted:         "user-parted",
	EventUserKicked:         "user-kicked",
	EventUserQuit:           "user-quit",
	EventNickChanged:        "nick-changed",
}

// AllEvents lists every event kind, in declaration order.
var AllEvents = []EventKind{
	EventPrivmsg, EventNotice, EventRaw,
	EventChannelModeChanged, EventUserModeChanged,
	EventUserJoined, EventUserParted, EventUserKicked, EventUserQuit,
	EventNickChanged,
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// ModeChange is one applied mode letter.
type ModeChange struct {
	Add    bool
	Letter byte
	Arg    string // ban mask, nick or mode parameter
}

func (c ModeChange) String() string {
	sign := "-"
	if c.Add {
		sign = "+"
	}
	if c.Arg == "" {
		return sign + string(c.Letter)
	}
	return sign + string(c.Letter) + " " + c.Arg
}

// Event is what listeners receive.
type Event struct {
	Kind    EventKind
	Message *Message // the line that produced the event

	Sender  string
	Target  string
	Text    string
	Channel *Channel     // nil when the channel is not in the registry
	User    *ChannelUser // the affected member, if any
	Mode    ModeChange   // set for mode events
}
