package models

import (
	"fmt"
	"strings"
)

// Mode is the communication channel of a conversation.
type Mode string

const (
	ModeOneOnOne  Mode = "one on one"
	ModeInGroup   Mode = "in group"
	ModeVideoCall Mode = "video call"
	ModePhoneCall Mode = "phone call"
	ModeEmail     Mode = "email"
	ModeText      Mode = "text"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeOneOnOne, ModeInGroup, ModeVideoCall, ModePhoneCall, ModeEmail, ModeText}

var modeAliases = map[string]Mode{
	"skype": ModeVideoCall,
	"phone": ModePhoneCall,
}

// ParseMode accepts any casing and treats '-' and '_' as spaces.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")
	for _, m := range Modes {
		if string(m) == norm {
			return m, nil
		}
	}
	if m, ok := modeAliases[norm]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// IsLive reports whether the mode presupposes the other party took part,
// which rules it out for an unreciprocated (seed) conversation.
func (m Mode) IsLive() bool {
	switch m {
	case ModeOneOnOne, ModeInGroup, ModeVideoCall, ModePhoneCall:
		return true
	}
	return false
}
