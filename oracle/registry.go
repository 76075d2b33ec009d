package oracle

import (
	"fmt"
	"strings"
)

// ByName builds one of the built-in oracles. External implementations
// are passed to the driver directly and never go through here.
func ByName(name string) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none", "":
		return Noop{}, nil

	case "channel":
		return NewChannel(ChannelConfig{}), nil

	case "emacross", "ema-cross":
		return NewEMACross(EMACrossConfig{}), nil

	default:
		return nil, fmt.Errorf("unknown oracle %q (supported: noop, channel, emacross)", name)
	}
}
