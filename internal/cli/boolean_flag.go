package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const (
	switchFlagTypeName       = "bool"
	switchFlagAcceptedValues = "true, false, yes, no, on, off, 1, 0"
	invalidSwitchValueFormat = "invalid value %q for --%s; accepted values: %s"
	flagTerminator           = "--"
	flagPrefix               = "--"
)

// reportSwitchFlags are the root command flags that take an optional boolean
// literal, as in "docsnap --tokens false ./site".
var reportSwitchFlags = map[string]struct{}{
	tokensFlagName:    {},
	gitignoreFlagName: {},
}

var switchFlagLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
}

func parseSwitchLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsed, known := switchFlagLiterals[normalized]
	return parsed, known
}

// switchFlagValue is a report option that is off until named on the command line.
type switchFlagValue struct {
	target *bool
	name   string
}

func (value *switchFlagValue) Set(input string) error {
	parsed, known := parseSwitchLiteral(input)
	if !known || value.target == nil {
		return fmt.Errorf(invalidSwitchValueFormat, input, value.name, switchFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *switchFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *switchFlagValue) Type() string {
	return switchFlagTypeName
}

func registerSwitchFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&switchFlagValue{target: target, name: name}, name, usage)
	flagSet.Lookup(name).NoOptDefVal = strconv.FormatBool(true)
}

// normalizeSwitchFlagArguments joins "--tokens <literal>" into "--tokens=<literal>".
// A following argument that is not a literal stays positional, so
// "docsnap --gitignore ./site" documents ./site with .gitignore applied.
func normalizeSwitchFlagArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == flagTerminator {
			return append(normalized, arguments[index:]...)
		}
		flagName := strings.TrimPrefix(current, flagPrefix)
		_, isSwitch := reportSwitchFlags[flagName]
		if isSwitch && strings.HasPrefix(current, flagPrefix) && index+1 < len(arguments) {
			if _, known := parseSwitchLiteral(arguments[index+1]); known && arguments[index+1] != "" {
				normalized = append(normalized, current+"="+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, current)
	}
	return normalized
}
