package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drblury/netflight/gateway"
	nferrors "github.com/drblury/netflight/internal/errors"
)

// EventSetting is the effective configuration of one event kind.
type EventSetting struct {
	Enabled   bool
	Threshold time.Duration
}

// AllKinds addresses every kind in a settings string.
const AllKinds = "*"

// ParseSettings parses a comma separated list of "kind#option=value" entries.
// Supported options are "enabled" (bool) and "threshold" (duration such as
// "20ms" or "20 ms"). Entries apply left to right, so later entries override
// earlier ones. Kinds that are not mentioned stay disabled with a zero
// threshold.
func ParseSettings(s string) (map[gateway.Kind]EventSetting, error) {
	settings := make(map[gateway.Kind]EventSetting, len(gateway.Kinds()))
	for _, k := range gateway.Kinds() {
		settings[k] = EventSetting{}
	}

	for _, raw := range strings.Split(s, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}

		target, option, ok := strings.Cut(entry, "#")
		if !ok {
			return nil, fmt.Errorf("%w: %q is missing '#'", nferrors.ErrInvalidSetting, entry)
		}
		key, value, ok := strings.Cut(option, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is missing '='", nferrors.ErrInvalidSetting, entry)
		}

		kinds, err := settingTargets(strings.TrimSpace(target))
		if err != nil {
			return nil, err
		}

		apply, err := settingOption(strings.TrimSpace(key), strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", entry, err)
		}
		for _, k := range kinds {
			settings[k] = apply(settings[k])
		}
	}
	return settings, nil
}

func settingTargets(target string) ([]gateway.Kind, error) {
	if target == AllKinds {
		return gateway.Kinds(), nil
	}
	k, err := gateway.ParseKind(target)
	if err != nil {
		return nil, err
	}
	return []gateway.Kind{k}, nil
}

func settingOption(key, value string) (func(EventSetting) EventSetting, error) {
	switch strings.ToLower(key) {
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: enabled=%q", nferrors.ErrInvalidSetting, value)
		}
		return func(s EventSetting) EventSetting {
			s.Enabled = enabled
			return s
		}, nil
	case "threshold":
		threshold, err := ParseThreshold(value)
		if err != nil {
			return nil, err
		}
		return func(s EventSetting) EventSetting {
			s.Threshold = threshold
			return s
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown option %q", nferrors.ErrInvalidSetting, key)
	}
}

// ParseThreshold parses a non-negative duration. Whitespace between number
// and unit is allowed and a bare "0" means no threshold.
func ParseThreshold(value string) (time.Duration, error) {
	compact := strings.Join(strings.Fields(value), "")
	if compact == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(compact)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: threshold=%q", nferrors.ErrInvalidSetting, value)
	}
	return d, nil
}

// FormatSettings renders settings back into the ParseSettings form, in kind
// order.
func FormatSettings(settings map[gateway.Kind]EventSetting) string {
	parts := make([]string, 0, 2*len(settings))
	for _, k := range gateway.Kinds() {
		s, ok := settings[k]
		if !ok {
			continue
		}
		parts = append(parts,
			fmt.Sprintf("%s#enabled=%t", k, s.Enabled),
			fmt.Sprintf("%s#threshold=%s", k, s.Threshold),
		)
	}
	return strings.Join(parts, ",")
}
