package irc

import (
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// RawMessage is one inbound line, tokenized on the protocol's field
// boundaries. It is never mutated after parsing.
type RawMessage struct {
	Line    string // the line, without its leading ':'
	Source  string // full prefix, e.g. nick!user@host
	Sender  string // prefix text before the first '!'
	Command string
	Params  []string
}

// ParseRawMessage tokenizes a line as read from the wire.
func ParseRawMessage(line string) (*RawMessage, error) {
	line = strings.TrimRight(line, "\r\n")
	msg, err := ircmsg.ParseLine(line)
	if err != nil {
		return nil, &ProtocolParseError{Line: line, Reason: "malformed line", Err: err}
	}
	if msg.Command == "" {
		return nil, &ProtocolParseError{Line: line, Reason: "missing command"}
	}

	sender := msg.Source
	if i := strings.IndexByte(sender, '!'); i >= 0 {
		sender = sender[:i]
	}
	return &RawMessage{
		Line:    strings.TrimPrefix(line, ":"),
		Source:  msg.Source,
		Sender:  sender,
		Command: strings.ToUpper(msg.Command),
		Params:  msg.Params,
	}, nil
}

// Param returns the i-th parameter, or "" if absent.
func (r *RawMessage) Param(i int) string {
	if i < 0 || i >= len(r.Params) {
		return ""
	}
	return r.Params[i]
}

// Trailing returns the last parameter, or "" if there is none.
func (r *RawMessage) Trailing() string {
	return r.Param(len(r.Params) - 1)
}

// UserHost splits the source into its user and host parts.
func (r *RawMessage) UserHost() (user, host string) {
	msg := ircmsg.Message{Source: r.Source}
	nuh, err := msg.NUH()
	if err != nil {
		return "", ""
	}
	return nuh.User, nuh.Host
}

// Kind is the classification of an inbound line.
type Kind int

const (
	KindRaw Kind = iota
	KindPing
	KindKick
	KindNotice
	KindPrivmsg
	KindCTCPVersion
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "PING"
	case KindKick:
		return "KICK"
	case KindNotice:
		return "NOTICE"
	case KindPrivmsg:
		return "PRIVMSG"
	case KindCTCPVersion:
		return "CTCP-VERSION"
	default:
		return "RAW"
	}
}

// Message is a classified inbound line.
type Message struct {
	Kind   Kind
	Raw    *RawMessage
	Sender string
	Target string // channel or nick the line is addressed to, if any
	Text   string // payload after the " :" marker
}

func (m *Message) String() string {
	return fmt.Sprintf("%s from=%q target=%q text=%q", m.Kind, m.Sender, m.Target, m.Text)
}

// Classify decides what a line is. The precedence is fixed:
//
//	CTCP VERSION request > PING > KICK of the local nick (auto-rejoin on)
//	> NOTICE > PRIVMSG > RAW
//
// Only the command field is inspected, so a payload that merely contains
// one of these words does not change the outcome.
func Classify(raw *RawMessage, nick string, autoRejoin bool) *Message {
	m := &Message{Kind: KindRaw, Raw: raw, Sender: raw.Sender}

	switch raw.Command {
	case "PRIVMSG":
		m.Kind = KindPrivmsg
		m.Target = raw.Param(0)
		m.Text = raw.Param(1)
		if verb, _ := splitCTCP(m.Text); verb == "VERSION" {
			m.Kind = KindCTCPVersion
		}
	case "PING":
		m.Kind = KindPing
		m.Text = raw.Trailing()
	case "KICK":
		m.Target = raw.Param(0)
		m.Text = raw.Param(2)
		if autoRejoin && nick != "" && casemapRFC1459(raw.Param(1)) == casemapRFC1459(nick) {
			m.Kind = KindKick
		}
	case "NOTICE":
		m.Kind = KindNotice
		m.Target = raw.Param(0)
		m.Text = raw.Param(1)
	default:
		for _, p := range raw.Params {
			if IsChannel(p) {
				m.Target = p
				break
			}
		}
		if len(raw.Params) > 1 {
			m.Text = raw.Trailing()
		}
	}
	return m
}

const ctcpDelim = "\x01"

// splitCTCP extracts the verb and arguments of a CTCP payload. It returns
// an empty verb if text is not a CTCP message.
func splitCTCP(text string) (verb, args string) {
	if !strings.HasPrefix(text, ctcpDelim) {
		return "", ""
	}
	text = strings.TrimSuffix(text[1:], ctcpDelim)
	verb, args, _ = strings.Cut(text, " ")
	return strings.ToUpper(verb), args
}

// CTCP wraps a verb and its arguments in the CTCP control byte.
func CTCP(verb, args string) string {
	if args == "" {
		return ctcpDelim + verb + ctcpDelim
	}
	return ctcpDelim + verb + " " + args + ctcpDelim
}
