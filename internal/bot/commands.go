package bot

import (
	"strconv"
	"strings"

	"github.com/dalnet/ircengine/internal/irc"
	"github.com/dalnet/ircengine/internal/links"
)

const defaultLastLines = 5

const (
	rplWelcome  = "001"
	rplLinks    = "364"
	rplEndLinks = "365"
)

// handleCommand processes a "!" command from a PRIVMSG
func (b *Bot) handleCommand(ev *irc.Event) {
	fields := strings.Fields(ev.Text)
	if len(fields) == 0 {
		return
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "!help":
		b.cmdHelp(ev)
	case "!version":
		b.cmdVersion(ev)
	case "!rank":
		b.cmdRank(ev, fields[1:])
	case "!bans":
		b.cmdBans(ev)
	case "!links":
		b.cmdLinks(ev)
	case "!last":
		b.cmdLast(ev, fields[1:])
	case "!search":
		b.cmdSearch(ev, strings.TrimSpace(strings.TrimPrefix(ev.Text, fields[0])))
	}
}

func (b *Bot) cmdHelp(ev *irc.Event) {
	b.reply(ev, "Available commands:")
	b.reply(ev, "$b!version$r - displays bot version information")
	b.reply(ev, "$b!rank [nick]$r - shows the highest privilege of a channel member")
	b.reply(ev, "$b!bans$r - lists the bans known for this channel")
	b.reply(ev, "$b!links$r - shows the server tree")
	if b.transcript != nil {
		b.reply(ev, "$b!last [number]$r - displays the most recent channel lines")
		b.reply(ev, "$b!search <text>$r - searches the transcript")
	}
}

func (b *Bot) cmdVersion(ev *irc.Event) {
	b.reply(ev, "ircbot version $b%s$r, built %s, commit %s", Version, BuildDate, GitCommit)
}

func (b *Bot) cmdRank(ev *irc.Event, args []string) {
	if ev.Channel == nil {
		b.reply(ev, "Please use !rank in a channel I am in")
		return
	}
	nick := ev.Sender
	if len(args) > 0 {
		nick = args[0]
	}
	u := ev.Channel.User(nick)
	if u == nil {
		b.replyUser(ev, "%s is not on %s", nick, ev.Channel.Name)
		return
	}
	b.replyUser(ev, "%s is $b%s$r on %s", u.Nick, u.Rank().String(), ev.Channel.Name)
}

// replyUser addresses the requester by nick in its channel when the
// registry knows it.
func (b *Bot) replyUser(ev *irc.Event, format string, args ...string) {
	if ev.User == nil {
		b.reply(ev, format, args...)
		return
	}
	b.session.ReplyInChannel(ev.User, decorate(format, args...))
}

func (b *Bot) cmdBans(ev *irc.Event) {
	if ev.Channel == nil {
		b.reply(ev, "Please use !bans in a channel I am in")
		return
	}
	bans := ev.Channel.Bans()
	if len(bans) == 0 {
		b.reply(ev, "No bans known for %s", ev.Channel.Name)
		return
	}
	b.reply(ev, "Bans on %s: %s", ev.Channel.Name, strings.Join(bans, ", "))
}

func (b *Bot) cmdLast(ev *irc.Event, args []string) {
	if b.transcript == nil {
		return
	}
	count := defaultLastLines
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			count = n
		}
	}
	// a command said in a channel is the newest entry
	var lines []string
	if irc.IsChannel(ev.Target) {
		lines = b.transcript.Latest(count + 1)
		if len(lines) > 0 {
			lines = lines[1:]
		}
	} else {
		lines = b.transcript.Latest(count)
	}
	b.reply(ev, "The last $b%s$r lines:", strconv.Itoa(len(lines)))
	for _, line := range lines {
		b.session.SendNotice(ev.Sender, line)
	}
}

func (b *Bot) cmdSearch(ev *irc.Event, term string) {
	if b.transcript == nil {
		return
	}
	if term == "" {
		b.reply(ev, "Please specify a string to search for")
		return
	}
	b.reply(ev, "Displaying search results for \"%s\":", term)
	matches := b.transcript.Search(term)
	if irc.IsChannel(ev.Target) && len(matches) > 0 && strings.HasSuffix(matches[0], "> "+ev.Text) {
		matches = matches[1:]
	}
	for _, line := range matches {
		b.session.SendNotice(ev.Sender, "    "+line)
	}
	b.session.SendNotice(ev.Sender, "End of matches")
}

func (b *Bot) cmdLinks(ev *irc.Event) {
	if b.linksTree != nil {
		b.reply(ev, "A LINKS request is already in progress")
		return
	}
	b.linksFor = ev.Sender
	b.linksTree = links.NewTree()
	b.session.SendRaw("LINKS")
}

// handleLinks collects 364 replies and answers the pending request on 365.
func (b *Bot) handleLinks(raw *irc.RawMessage) {
	if b.linksTree == nil {
		return
	}
	switch raw.Command {
	case rplLinks:
		s, err := links.ParseReply(raw.Params)
		if err != nil {
			b.logger.Debug().Err(err).Str("line", raw.Line).Msg("ignoring links reply")
			return
		}
		b.linksTree.Add(s)
	case rplEndLinks:
		tree, target := b.linksTree, b.linksFor
		b.linksTree, b.linksFor = nil, ""

		lines, err := tree.Lines()
		if err != nil {
			b.session.SendNotice(target, err.Error())
			return
		}
		for _, line := range lines {
			b.session.SendNotice(target, line)
		}
		b.session.SendNotice(target, decorate("$b%s$r servers: %s",
			strconv.Itoa(tree.Len()), strings.Join(tree.ShortNames(), ", ")))
	}
}
