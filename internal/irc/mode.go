package irc

import "strings"

// Privilege mode letters, highest precedence first, and the ban letter.
const (
	ModeOwner    byte = 'q'
	ModeProtect  byte = 'a'
	ModeOperator byte = 'o'
	ModeHalfOp   byte = 'h'
	ModeVoice    byte = 'v'
	ModeBan      byte = 'b'
)

const (
	privilegeModes   = "qaohv"
	privilegeSymbols = "~&@%+"
)

// Rank is the single highest privilege a member holds in a channel.
type Rank int

const (
	RankNone Rank = iota
	RankVoice
	RankHalfOperator
	RankOperator
	RankProtect
	RankOwner
)

func (r Rank) String() string {
	switch r {
	case RankOwner:
		return "owner"
	case RankProtect:
		return "protect"
	case RankOperator:
		return "operator"
	case RankHalfOperator:
		return "half-operator"
	case RankVoice:
		return "voice"
	default:
		return "none"
	}
}

// LetterToSymbol maps a privilege mode letter to its prefix symbol.
// The ban letter has no symbol.
func LetterToSymbol(letter byte) (byte, bool) {
	i := strings.IndexByte(privilegeModes, letter)
	if i < 0 {
		return 0, false
	}
	return privilegeSymbols[i], true
}

// SymbolToLetter maps a prefix symbol to its privilege mode letter.
func SymbolToLetter(symbol byte) (byte, bool) {
	i := strings.IndexByte(privilegeSymbols, symbol)
	if i < 0 {
		return 0, false
	}
	return privilegeModes[i], true
}

// IsPrivilege reports whether letter is one of the member privilege modes.
func IsPrivilege(letter byte) bool {
	return strings.IndexByte(privilegeModes, letter) >= 0
}

// Modes is a set of mode letters (a-z, A-Z).
type Modes uint64

func modeBit(letter byte) (Modes, bool) {
	switch {
	case 'a' <= letter && letter <= 'z':
		return 1 << (letter - 'a'), true
	case 'A' <= letter && letter <= 'Z':
		return 1 << (26 + letter - 'A'), true
	}
	return 0, false
}

// ParseModes parses a signed mode string such as "+ov-b" into the set of
// letters it leaves active. A string without a leading sign is additive.
func ParseModes(s string) Modes {
	return Modes(0).Apply(s)
}

// ModesFromPrefix converts a string of prefix symbols ("@+") into modes.
// Characters that are not prefix symbols are ignored.
func ModesFromPrefix(symbols string) Modes {
	var m Modes
	for i := 0; i < len(symbols); i++ {
		if letter, ok := SymbolToLetter(symbols[i]); ok {
			m = m.Set(letter)
		}
	}
	return m
}

// Apply folds a signed mode string onto m. The current sign applies to every
// following letter until it flips.
func (m Modes) Apply(s string) Modes {
	add := true
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			add = true
		case '-':
			add = false
		default:
			if add {
				m = m.Set(c)
			} else {
				m = m.Unset(c)
			}
		}
	}
	return m
}

// Set returns m with letter added.
func (m Modes) Set(letter byte) Modes {
	bit, _ := modeBit(letter)
	return m | bit
}

// Unset returns m with letter removed.
func (m Modes) Unset(letter byte) Modes {
	bit, _ := modeBit(letter)
	return m &^ bit
}

// Has reports whether letter is in m.
func (m Modes) Has(letter byte) bool {
	bit, ok := modeBit(letter)
	return ok && m&bit != 0
}

// Letters returns the active letters, privilege letters first in precedence
// order, then the rest in alphabetical order.
func (m Modes) Letters() string {
	var sb strings.Builder
	for i := 0; i < len(privilegeModes); i++ {
		if m.Has(privilegeModes[i]) {
			sb.WriteByte(privilegeModes[i])
		}
	}
	for _, r := range "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" {
		c := byte(r)
		if !IsPrivilege(c) && m.Has(c) {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// String serializes m as a signed mode string, or "" for the empty set.
func (m Modes) String() string {
	letters := m.Letters()
	if letters == "" {
		return ""
	}
	return "+" + letters
}

// Prefix returns the prefix symbols of the privilege letters in m.
func (m Modes) Prefix() string {
	var sb strings.Builder
	for i := 0; i < len(privilegeModes); i++ {
		if m.Has(privilegeModes[i]) {
			sb.WriteByte(privilegeSymbols[i])
		}
	}
	return sb.String()
}

// Rank returns the highest privilege in m, regardless of how many are set.
func (m Modes) Rank() Rank {
	switch {
	case m.Has(ModeOwner):
		return RankOwner
	case m.Has(ModeProtect):
		return RankProtect
	case m.Has(ModeOperator):
		return RankOperator
	case m.Has(ModeHalfOp):
		return RankHalfOperator
	case m.Has(ModeVoice):
		return RankVoice
	}
	return RankNone
}

// modeTakesArg reports whether a channel mode letter consumes a parameter.
func modeTakesArg(letter byte, add bool) bool {
	switch letter {
	case ModeBan, 'k', 'e', 'I':
		return true
	case 'l':
		return add
	}
	return IsPrivilege(letter)
}
