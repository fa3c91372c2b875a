package irc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ergochat/irc-go/ircreader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Version is the default CTCP VERSION reply.
var Version = "ircengine dev"

const (
	// rejoinDelay is how long to wait after being kicked before joining again.
	rejoinDelay = 700 * time.Millisecond

	initialLineBuf = 512
	maxLineLen     = 1 << 20
)

// SessionParams configures a session.
type SessionParams struct {
	AutoRejoin bool
	Version    string // CTCP VERSION reply, defaults to Version

	Logger *zerolog.Logger

	// ErrorHandler receives recoverable errors: *ProtocolParseError,
	// *ListenerError, and *TransportError for failed writes. It may be
	// called from any of the session's goroutines.
	ErrorHandler func(error)
}

// Session is one connection to an IRC server.
//
// Three goroutines cooperate: the reader (Run's caller), the writer that
// drains the outbound queue, and the dispatcher that owns the registry and
// invokes listeners.
type Session struct {
	conn    net.Conn
	logger  zerolog.Logger
	onError func(error)
	version string

	nick       atomic.Value // string
	autoRejoin atomic.Bool

	registry   *Registry
	dispatcher *Dispatcher
	outbound   *queue[string]

	rejoinDelay time.Duration
	timers      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// Connect dials addr over TCP and returns a session for the connection.
// The caller still has to Register and Run it.
func Connect(ctx context.Context, addr string, params SessionParams) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return NewSession(conn, params), nil
}

// NewSession wraps an established connection.
func NewSession(conn net.Conn, params SessionParams) *Session {
	base := zerolog.Nop()
	if params.Logger != nil {
		base = *params.Logger
	}
	version := params.Version
	if version == "" {
		version = Version
	}

	s := &Session{
		conn:        conn,
		onError:     params.ErrorHandler,
		version:     version,
		registry:    NewRegistry(),
		outbound:    newQueue[string](),
		rejoinDelay: rejoinDelay,
	}
	s.logger = base.With().
		Str("session", uuid.NewString()).
		Str("peer", s.peerAddress()).
		Logger()
	s.nick.Store("")
	s.autoRejoin.Store(params.AutoRejoin)
	s.dispatcher = NewDispatcher(s.logger, s.onError)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Run processes the connection until the server closes it, a read fails or
// ctx is canceled. On return the connection is closed, the writer has
// stopped and every event queued before the end has been delivered.
//
// A clean end of stream returns nil; a read failure returns a
// *TransportError.
func (s *Session) Run(ctx context.Context) error {
	stopParent := context.AfterFunc(ctx, s.cancel)
	defer stopParent()
	stopClose := context.AfterFunc(s.ctx, func() { s.conn.Close() })
	defer stopClose()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.dispatcher.Run()
	}()
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()

	s.logger.Info().Msg("session started")
	err := s.readLoop()

	s.cancel()
	s.conn.Close()
	s.outbound.close()
	s.dispatcher.Stop()
	s.timers.Wait()
	wg.Wait()

	if err != nil {
		s.logger.Error().Err(err).Msg("session ended")
		return err
	}
	s.logger.Info().Msg("session ended")
	return ctx.Err()
}

func (s *Session) readLoop() error {
	var r ircreader.Reader
	r.Initialize(s.conn, initialLineBuf, maxLineLen)
	for {
		line, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || s.ctx.Err() != nil {
				return nil
			}
			return &TransportError{Op: "read", Err: err}
		}
		s.handleLine(string(line))
	}
}

// handleLine classifies one line, answers what needs no application
// involvement and hands the rest to the dispatcher.
func (s *Session) handleLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	s.logger.Debug().Str("line", line).Msg("recv")

	raw, err := ParseRawMessage(line)
	if err != nil {
		s.report(err)
		return
	}

	// our own nick changes before the next line is classified
	if raw.Command == "NICK" && s.isMe(raw.Sender) && raw.Param(0) != "" {
		s.SetNick(raw.Param(0))
	}

	msg := Classify(raw, s.Nick(), s.AutoRejoin())
	switch msg.Kind {
	case KindCTCPVersion:
		if msg.Sender != "" {
			s.SendNotice(msg.Sender, CTCP("VERSION", s.version))
		}
	case KindPing:
		s.SendRaw("PONG " + s.peerAddress())
		return
	case KindKick:
		s.scheduleRejoin(msg.Target)
	}

	s.dispatcher.exec(func() {
		for _, ev := range s.eventsFor(msg) {
			s.dispatcher.deliver(ev)
		}
	})
}

// scheduleRejoin joins channel again after rejoinDelay, unless the session
// ends first.
func (s *Session) scheduleRejoin(channel string) {
	s.logger.Info().Str("channel", channel).Msg("kicked, rejoining")
	s.timers.Add(1)
	go func() {
		defer s.timers.Done()
		t := time.NewTimer(s.rejoinDelay)
		defer t.Stop()
		select {
		case <-t.C:
			s.JoinChannel(channel)
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) writeLoop() {
	w := bufio.NewWriter(s.conn)
	for {
		cmd, ok := s.outbound.pop(s.ctx.Done())
		if !ok {
			return
		}
		_, err := w.WriteString(cmd)
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			// the command is lost
			s.report(&TransportError{Op: "write", Err: err})
			w.Reset(s.conn)
			continue
		}
		s.logger.Debug().Str("line", strings.TrimRight(cmd, "\r\n")).Msg("sent")
	}
}

func (s *Session) report(err error) {
	var perr *ProtocolParseError
	if errors.As(err, &perr) {
		s.logger.Debug().Err(err).Msg("dropped input")
	} else {
		s.logger.Warn().Err(err).Msg("session error")
	}
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Session) peerAddress() string {
	addr := s.conn.RemoteAddr()
	if addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}

// Nick returns the locally tracked nickname.
func (s *Session) Nick() string {
	return s.nick.Load().(string)
}

// SetNick changes the nickname used to recognize lines about ourselves. No
// NICK command is sent.
func (s *Session) SetNick(nick string) {
	s.nick.Store(nick)
}

func (s *Session) isMe(nick string) bool {
	me := s.Nick()
	return me != "" && casemapRFC1459(me) == casemapRFC1459(nick)
}

// AutoRejoin reports whether kicks from a channel are followed by a JOIN.
func (s *Session) AutoRejoin() bool {
	return s.autoRejoin.Load()
}

// SetAutoRejoin toggles joining a channel again after being kicked from it.
func (s *Session) SetAutoRejoin(on bool) {
	s.autoRejoin.Store(on)
}

// AddListener subscribes l to the given event kinds, or to all of them.
func (s *Session) AddListener(l Listener, kinds ...EventKind) error {
	return s.dispatcher.AddListener(l, kinds...)
}

// Channels returns the channel registry. It must only be used from
// listeners or from functions passed to Do.
func (s *Session) Channels() *Registry {
	return s.registry
}

// Do runs fn with the registry on the dispatcher goroutine, after all
// events queued so far. It returns false if the session has ended.
func (s *Session) Do(fn func(reg *Registry)) bool {
	return s.dispatcher.exec(func() { fn(s.registry) })
}

// SendRaw queues a command for the server. It never blocks. A missing line
// terminator is added; the text is otherwise sent as is.
func (s *Session) SendRaw(command string) {
	if !strings.HasSuffix(command, "\n") {
		command += "\r\n"
	}
	if !s.outbound.push(command) {
		s.logger.Debug().Str("line", strings.TrimRight(command, "\r\n")).Msg("session closed, command dropped")
	}
}

// Register sends NICK and USER and starts tracking nick as ours.
func (s *Session) Register(nick, user, realName string) {
	if user == "" {
		user = nick
	}
	s.SetNick(nick)
	s.SendRaw("NICK " + nick)
	s.SendRaw(fmt.Sprintf("USER %s 0 * :%s", user, realName))
}

// SendMessage sends a PRIVMSG to a nick or channel.
func (s *Session) SendMessage(target, text string) {
	s.SendRaw(fmt.Sprintf("PRIVMSG %s :%s", target, text))
}

// SendNotice sends a NOTICE to a nick or channel.
func (s *Session) SendNotice(target, text string) {
	s.SendRaw(fmt.Sprintf("NOTICE %s :%s", target, text))
}

// SendAction sends a CTCP ACTION ("/me").
func (s *Session) SendAction(target, text string) {
	s.SendMessage(target, CTCP("ACTION", text))
}

// MessageUser sends a private PRIVMSG to a channel member.
func (s *Session) MessageUser(u *ChannelUser, text string) {
	s.SendMessage(u.Nick, text)
}

// ReplyInChannel addresses u in the channel it was seen in, as "nick: text".
func (s *Session) ReplyInChannel(u *ChannelUser, text string) {
	s.SendMessage(u.Channel(), u.Nick+": "+text)
}

// JoinChannel adds the channel to the registry and sends JOIN.
func (s *Session) JoinChannel(name string) {
	s.dispatcher.exec(func() { s.registry.AddChannel(name) })
	s.SendRaw("JOIN " + name)
}

// Part leaves a channel, with an optional reason.
func (s *Session) Part(channel, reason string) {
	if reason == "" {
		s.SendRaw("PART " + channel)
		return
	}
	s.SendRaw(fmt.Sprintf("PART %s :%s", channel, reason))
}

// SetMode sends a MODE change for a channel or nick.
func (s *Session) SetMode(target, modes string, args ...string) {
	s.SendRaw(strings.Join(append([]string{"MODE", target, modes}, args...), " "))
}

// Quit disconnects from IRC
func (s *Session) Quit(reason string) {
	s.SendRaw("QUIT :" + reason)
}
