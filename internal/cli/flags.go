package cli

import (
	"fmt"

	"github.com/fendrel/codeloom/internal/cliconfig"
)

// onParseErrorValue implements pflag.Value so --on-parse-error can only be
// set to one of the three recognized policy names (spec.md §6).
type onParseErrorValue struct {
	value *cliconfig.OnParseError
}

func newOnParseErrorValue(def cliconfig.OnParseError, p *cliconfig.OnParseError) *onParseErrorValue {
	*p = def
	return &onParseErrorValue{value: p}
}

func (v *onParseErrorValue) String() string {
	if v.value == nil {
		return string(cliconfig.OnParseErrorIgnore)
	}
	return string(*v.value)
}

func (v *onParseErrorValue) Set(s string) error {
	switch cliconfig.OnParseError(s) {
	case cliconfig.OnParseErrorIgnore, cliconfig.OnParseErrorWarn, cliconfig.OnParseErrorError:
		*v.value = cliconfig.OnParseError(s)
		return nil
	default:
		return fmt.Errorf("must be one of: ignore, warn, error")
	}
}

func (v *onParseErrorValue) Type() string { return "CHOICE" }
