package common

import (
	"fmt"
	"slices"
	"strings"
)

// ParseFeatureFlags parses a comma-separated list of flag names and combines that with a
// map describing default flag settings in the absence of any flags. A flag name can be
// prefixed with 'no_' to explicitly set it to a false value. Names which have no default
// are rejected, so that a misspelled flag in a suite config is not silently ignored.
func ParseFeatureFlags(flags string, defaults map[string]bool) (map[string]bool, error) {
	var settings = make(map[string]bool)
	for k, v := range defaults {
		settings[k] = v
	}
	for _, flagName := range strings.Split(flags, ",") {
		flagName = strings.TrimSpace(flagName)
		var flagValue = true
		if strings.HasPrefix(flagName, "no_") {
			flagName = strings.TrimPrefix(flagName, "no_")
			flagValue = false
		}
		if flagName == "" {
			continue
		} else if _, ok := defaults[flagName]; !ok {
			return nil, fmt.Errorf("unknown feature flag %q", flagName)
		}
		settings[flagName] = flagValue
	}
	return settings, nil
}

// FormatFeatureFlags is the inverse of ParseFeatureFlags, listing every flag in
// name order.
func FormatFeatureFlags(settings map[string]bool) string {
	var names = make([]string, 0, len(settings))
	for k := range settings {
		names = append(names, k)
	}
	slices.Sort(names)

	for i, name := range names {
		if !settings[name] {
			names[i] = "no_" + name
		}
	}
	return strings.Join(names, ",")
}
