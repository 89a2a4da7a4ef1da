package serverconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// Nudity is the server's nudity limit. The wire form is the numeric
// discriminant; unknown discriminants are rejected.
type Nudity int32

const (
	NudityNone Nudity = iota
	NudityPartial
	NudityFull
)

func (n Nudity) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(n))), nil
}

func (n *Nudity) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, int32(NudityFull))
	if err != nil {
		return fmt.Errorf("serverconfig: nudity: %w", err)
	}
	*n = Nudity(v)
	return nil
}

// Community is the declared play style of the server.
type Community int32

const (
	CommunityNone Community = iota
	CommunityPurist
	CommunityRelaxed
	CommunityHardcore
	CommunityRoleplaying
	CommunityExperimental
)

func (c Community) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(c))), nil
}

func (c *Community) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, int32(CommunityExperimental))
	if err != nil {
		return fmt.Errorf("serverconfig: community: %w", err)
	}
	*c = Community(v)
	return nil
}

// parseEnum parses a numeric discriminant and rejects values outside
// [0, max].
func parseEnum(text []byte, max int32) (int32, error) {
	v, err := strconv.ParseInt(string(text), 10, 32)
	if err != nil {
		return 0, err
	}
	if v < 0 || int32(v) > max {
		return 0, fmt.Errorf("discriminant %d out of range", v)
	}
	return int32(v), nil
}

// ChatFilter selects profanity filtering for text chat. Unlike the
// numeric enums it round-trips by variant name, case-insensitively.
type ChatFilter int

const (
	ChatFilterNone ChatFilter = iota
	ChatFilterBasic
	ChatFilterStrict
)

var chatFilterNames = [...]string{"None", "Basic", "Strict"}

func (c ChatFilter) String() string {
	if c < 0 || int(c) >= len(chatFilterNames) {
		return fmt.Sprintf("ChatFilter(%d)", int(c))
	}
	return chatFilterNames[c]
}

func (c ChatFilter) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(chatFilterNames) {
		return nil, fmt.Errorf("serverconfig: unknown chat filter %d", int(c))
	}
	return []byte(chatFilterNames[c]), nil
}

func (c *ChatFilter) UnmarshalText(text []byte) error {
	for i, name := range chatFilterNames {
		if strings.EqualFold(name, string(text)) {
			*c = ChatFilter(i)
			return nil
		}
	}
	return fmt.Errorf("serverconfig: unknown chat filter %q", text)
}
