package cmd

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/resolver"
)

// statusFlag is an integer flag restricted to 0, 1 and 2.
type statusFlag struct {
	value resolver.Status
	set   bool
}

var _ pflag.Value = (*statusFlag)(nil)

func (s *statusFlag) String() string {
	if !s.set {
		return ""
	}
	return strconv.Itoa(int(s.value))
}

func (s *statusFlag) Set(v string) error {
	st, err := resolver.ParseStatus(v)
	if err != nil {
		return err
	}
	s.value = st
	s.set = true
	return nil
}

func (s *statusFlag) Type() string {
	return "int"
}

// optionalString returns a pointer to the flag's value when it was given on
// the command line, nil otherwise.
func optionalString(flags *pflag.FlagSet, name string, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}
