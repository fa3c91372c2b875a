package irc

import "strings"

const rplNamreply = "353" // <me> <=/*/@> <channel> :1*(@/ /+user)

// eventsFor updates the registry for one classified line and returns the
// events to deliver, in order. It runs on the dispatcher goroutine.
func (s *Session) eventsFor(msg *Message) []*Event {
	switch msg.Kind {
	case KindPrivmsg, KindCTCPVersion:
		return []*Event{s.messageEvent(EventPrivmsg, msg)}
	case KindNotice:
		return []*Event{s.messageEvent(EventNotice, msg)}
	case KindKick:
		return s.handleKick(msg, true)
	}

	raw := msg.Raw
	events := []*Event{{
		Kind:    EventRaw,
		Message: msg,
		Sender:  msg.Sender,
		Target:  msg.Target,
		Text:    msg.Text,
		Channel: s.lookupChannel(msg.Target),
	}}

	switch raw.Command {
	case "JOIN":
		events = append(events, s.handleJoin(msg)...)
	case "PART":
		events = append(events, s.handlePart(msg)...)
	case "KICK":
		events = append(events, s.handleKick(msg, false)...)
	case "QUIT":
		events = append(events, s.handleQuit(msg)...)
	case "NICK":
		events = append(events, s.handleNick(msg)...)
	case rplNamreply:
		s.handleNames(msg)
	case "MODE":
		modeEvents, errs := ApplyMode(s.registry, msg)
		for _, err := range errs {
			s.report(err)
		}
		events = append(events, modeEvents...)
	}
	return events
}

func (s *Session) lookupChannel(name string) *Channel {
	if !IsChannel(name) {
		return nil
	}
	return s.registry.Channel(name)
}

func (s *Session) messageEvent(kind EventKind, msg *Message) *Event {
	ev := &Event{
		Kind:    kind,
		Message: msg,
		Sender:  msg.Sender,
		Target:  msg.Target,
		Text:    msg.Text,
		Channel: s.lookupChannel(msg.Target),
	}
	if ev.Channel != nil {
		ev.User = ev.Channel.User(msg.Sender)
	}
	return ev
}

func (s *Session) handleJoin(msg *Message) []*Event {
	name := msg.Raw.Param(0)
	if name == "" || msg.Sender == "" {
		return nil
	}
	ch := s.registry.AddChannel(name)
	user, host := msg.Raw.UserHost()
	u := ch.AddUser(msg.Sender, user, host, "")
	return []*Event{{
		Kind:    EventUserJoined,
		Message: msg,
		Sender:  msg.Sender,
		Target:  ch.Name,
		Channel: ch,
		User:    u,
	}}
}

func (s *Session) handlePart(msg *Message) []*Event {
	name := msg.Raw.Param(0)
	ev := &Event{
		Kind:    EventUserParted,
		Message: msg,
		Sender:  msg.Sender,
		Target:  name,
		Text:    msg.Raw.Param(1),
		Channel: s.registry.Channel(name),
	}
	if ev.Channel != nil {
		ev.User = ev.Channel.User(msg.Sender)
		if s.isMe(msg.Sender) {
			s.registry.RemoveChannel(name)
		} else {
			ev.Channel.RemoveUser(msg.Sender)
		}
	}
	return []*Event{ev}
}

// handleKick removes the victim. When we are the victim the channel is
// forgotten, unless a rejoin has been scheduled.
func (s *Session) handleKick(msg *Message, rejoining bool) []*Event {
	name, victim := msg.Raw.Param(0), msg.Raw.Param(1)
	ev := &Event{
		Kind:    EventUserKicked,
		Message: msg,
		Sender:  msg.Sender,
		Target:  name,
		Text:    msg.Raw.Param(2),
		Channel: s.registry.Channel(name),
	}
	if ev.Channel == nil {
		return []*Event{ev}
	}
	ev.User = ev.Channel.User(victim)
	switch {
	case s.isMe(victim) && rejoining:
		ev.Channel.clearUsers()
	case s.isMe(victim):
		s.registry.RemoveChannel(name)
	default:
		ev.Channel.RemoveUser(victim)
	}
	return []*Event{ev}
}

func (s *Session) handleQuit(msg *Message) []*Event {
	var events []*Event
	for _, ch := range s.registry.Channels() {
		u := ch.User(msg.Sender)
		if u == nil {
			continue
		}
		ch.RemoveUser(msg.Sender)
		events = append(events, &Event{
			Kind:    EventUserQuit,
			Message: msg,
			Sender:  msg.Sender,
			Target:  ch.Name,
			Text:    msg.Raw.Param(0),
			Channel: ch,
			User:    u,
		})
	}
	return events
}

func (s *Session) handleNick(msg *Message) []*Event {
	newNick := msg.Raw.Param(0)
	if newNick == "" {
		return nil
	}
	renamed := s.registry.RenameUser(msg.Sender, newNick)
	if len(renamed) == 0 {
		return []*Event{{Kind: EventNickChanged, Message: msg, Sender: msg.Sender, Text: newNick}}
	}
	events := make([]*Event, 0, len(renamed))
	for _, ch := range renamed {
		events = append(events, &Event{
			Kind:    EventNickChanged,
			Message: msg,
			Sender:  msg.Sender,
			Target:  ch.Name,
			Text:    newNick,
			Channel: ch,
			User:    ch.User(newNick),
		})
	}
	return events
}

// handleNames records the members listed in RPL_NAMREPLY, with or without
// userhost-in-names.
func (s *Session) handleNames(msg *Message) {
	name := msg.Raw.Param(2)
	if !IsChannel(name) {
		return
	}
	ch := s.registry.AddChannel(name)
	for _, entry := range strings.Fields(msg.Raw.Param(3)) {
		i := 0
		for i < len(entry) {
			if _, ok := SymbolToLetter(entry[i]); !ok {
				break
			}
			i++
		}
		prefixes, nuh := entry[:i], entry[i:]
		nick, userhost, _ := strings.Cut(nuh, "!")
		user, host, _ := strings.Cut(userhost, "@")
		if nick == "" {
			continue
		}
		ch.AddUser(nick, user, host, "").SetPrefixes(prefixes)
	}
}
