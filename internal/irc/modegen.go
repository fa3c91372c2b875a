package irc

// ApplyMode applies a MODE line to the registry and returns the events it
// produced, in mode letter order.
//
// Lines for unknown channels (including user MODE lines) are dropped
// without error. A privilege letter naming an absent member is skipped
// without an event. Every letter that takes a parameter consumes one
// positionally, whether or not it was applied; letters missing their
// parameter are reported and skipped.
func ApplyMode(reg *Registry, msg *Message) (events []*Event, errs []error) {
	raw := msg.Raw
	ch := reg.Channel(raw.Param(0))
	if ch == nil {
		return nil, nil
	}
	if len(raw.Params) < 2 {
		return nil, []error{&ProtocolParseError{Line: raw.Line, Reason: "MODE without mode string"}}
	}

	modes := raw.Params[1]
	args := raw.Params[2:]
	next := 0
	add := true

	for i := 0; i < len(modes); i++ {
		letter := modes[i]
		switch letter {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		change := ModeChange{Add: add, Letter: letter}
		if modeTakesArg(letter, add) {
			if next >= len(args) {
				errs = append(errs, &ProtocolParseError{
					Line:   raw.Line,
					Reason: "missing parameter for mode " + change.String(),
				})
				continue
			}
			change.Arg = args[next]
			next++
		}

		ev := &Event{
			Message: msg,
			Sender:  raw.Sender,
			Target:  ch.Name,
			Channel: ch,
			Mode:    change,
		}

		switch {
		case letter == ModeBan:
			if add {
				ch.AddBan(change.Arg)
			} else {
				ch.RemoveBan(change.Arg)
			}
			ev.Kind = EventChannelModeChanged
		case IsPrivilege(letter):
			u := ch.User(change.Arg)
			if u == nil {
				continue
			}
			if add {
				u.AddMode(letter)
			} else {
				u.RemoveMode(letter)
			}
			ev.Kind = EventUserModeChanged
			ev.User = u
		case letter == 'e' || letter == 'I':
			// exception and invite lists are not tracked
			ev.Kind = EventChannelModeChanged
		default:
			if add {
				ch.Modes = ch.Modes.Set(letter)
			} else {
				ch.Modes = ch.Modes.Unset(letter)
			}
			ev.Kind = EventChannelModeChanged
		}
		events = append(events, ev)
	}
	return events, errs
}
