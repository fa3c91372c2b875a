package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalnet/ircengine/internal/config"
	"github.com/dalnet/ircengine/internal/irc"
	"github.com/dalnet/ircengine/internal/links"
	"github.com/dalnet/ircengine/internal/storage"
	"github.com/ergochat/irc-go/ircfmt"
	"github.com/rs/zerolog"
)

// Version information (set at build time or here)
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Bot is a thin client over an irc.Session: it registers, joins its
// configured channels and answers a few commands.
type Bot struct {
	cfg        *config.Config
	logger     *zerolog.Logger
	session    *irc.Session
	transcript *storage.Transcript

	// an outstanding !links request; touched only on the dispatcher
	linksFor  string
	linksTree *links.Tree

	// OnStart runs once the bot has registered and queued its joins.
	OnStart func()
}

// New creates a bot. The transcript is opened when enabled in cfg.
func New(cfg *config.Config, logger *zerolog.Logger) (*Bot, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	b := &Bot{cfg: cfg, logger: logger}

	if cfg.Transcript {
		tr, err := storage.OpenTranscript(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript: %w", err)
		}
		b.transcript = tr
	}
	return b, nil
}

// SessionParams returns the session configuration derived from the bot's
// config.
func (b *Bot) SessionParams() irc.SessionParams {
	version := b.cfg.VersionReply
	if version == "" {
		version = fmt.Sprintf("ircbot %s (built %s, commit %s)", Version, BuildDate, GitCommit)
	}
	return irc.SessionParams{
		AutoRejoin: b.cfg.AutoRejoin,
		Version:    version,
		Logger:     b.logger,
	}
}

// Connect dials the configured server and attaches to the new session.
func (b *Bot) Connect(ctx context.Context) error {
	s, err := irc.Connect(ctx, b.cfg.Addr(), b.SessionParams())
	if err != nil {
		return err
	}
	return b.Attach(s)
}

// Attach registers on s, subscribes the bot and joins its channels.
func (b *Bot) Attach(s *irc.Session) error {
	b.session = s
	if b.cfg.ServerPass != "" {
		s.SendRaw("PASS " + b.cfg.ServerPass)
	}
	s.Register(b.cfg.Nick, b.cfg.Username, b.cfg.RealName)
	if err := s.AddListener(b, irc.EventPrivmsg, irc.EventNotice, irc.EventUserKicked, irc.EventRaw); err != nil {
		return err
	}
	for _, ch := range b.cfg.Channels {
		s.JoinChannel(ch)
	}
	b.logger.Info().Str("nick", b.cfg.Nick).Strs("channels", b.cfg.Channels).Msg("registered")

	if b.OnStart != nil {
		b.OnStart()
	}
	return nil
}

// Run processes the session until it ends.
func (b *Bot) Run(ctx context.Context) error {
	return b.session.Run(ctx)
}

// Quit disconnects from IRC
func (b *Bot) Quit(message string) {
	if b.session != nil {
		b.session.Quit(message)
	}
}

// HandleEvent is called on the session's dispatcher goroutine.
func (b *Bot) HandleEvent(ev *irc.Event) error {
	switch ev.Kind {
	case irc.EventPrivmsg:
		b.record(ev)
		if strings.HasPrefix(ev.Text, "!") {
			b.handleCommand(ev)
		}
	case irc.EventNotice:
		b.record(ev)
	case irc.EventUserKicked:
		b.logger.Info().Str("channel", ev.Target).Str("by", ev.Sender).Str("reason", ev.Text).Msg("kick")
	case irc.EventRaw:
		if ev.Message.Raw.Command == rplWelcome {
			b.onWelcome()
		}
		b.handleLinks(ev.Message.Raw)
	}
	return nil
}

func (b *Bot) onWelcome() {
	b.logger.Info().Msg("connected to IRC server")

	// Identify to NickServ
	if b.cfg.NickPass != "" {
		b.session.SendRaw(fmt.Sprintf("PRIVMSG NickServ :IDENTIFY %s %s", b.session.Nick(), b.cfg.NickPass))
	}
}

func (b *Bot) record(ev *irc.Event) {
	if b.transcript == nil || !irc.IsChannel(ev.Target) {
		return
	}
	timestamp := time.Now().UTC().Format("Mon Jan 02, 2006 15:04:05 GMT")
	entry := fmt.Sprintf("[%s] [%s] <%s> %s", timestamp, ev.Target, ev.Sender, ircfmt.Strip(ev.Text))
	if err := b.transcript.Add(entry); err != nil {
		b.logger.Warn().Err(err).Msg("error saving transcript")
	}
}

// reply answers in the channel the event came from, or privately.
func (b *Bot) reply(ev *irc.Event, format string, args ...string) {
	target := ev.Target
	if !irc.IsChannel(target) {
		target = ev.Sender
	}
	b.session.SendMessage(target, decorate(format, args...))
}

// decorate expands ircfmt placeholders ($b, $c[red], $r) in format. The
// arguments are inserted literally.
func decorate(format string, args ...string) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = ircfmt.Escape(a)
	}
	return ircfmt.Unescape(fmt.Sprintf(format, escaped...))
}
