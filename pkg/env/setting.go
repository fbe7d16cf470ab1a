package env

import (
	"os"
	"strconv"
	"strings"
)

// Setting is a process-level knob read from an environment variable.
type Setting interface {
	EnvVar() string
	Setting() string
}

type settingOpts struct {
	defaultValue     string
	allowEmpty       bool
	stripWhitespaces bool
}

// SettingOption customizes a registered setting.
type SettingOption func(*settingOpts)

// WithDefault sets the value returned when the environment variable is unset.
func WithDefault(value string) SettingOption {
	return func(o *settingOpts) {
		o.defaultValue = value
	}
}

// AllowEmpty makes an explicitly empty variable override the default.
func AllowEmpty() SettingOption {
	return func(o *settingOpts) {
		o.allowEmpty = true
	}
}

// StripAnyWhitespace trims surrounding whitespace from the value.
func StripAnyWhitespace() SettingOption {
	return func(o *settingOpts) {
		o.stripWhitespaces = true
	}
}

type setting struct {
	envVar string
	opts   settingOpts
}

var (
	registry = make(map[string]Setting)
)

// RegisterSetting registers a string setting backed by envVar.
func RegisterSetting(envVar string, opts ...SettingOption) Setting {
	s := &setting{envVar: envVar}
	for _, opt := range opts {
		opt(&s.opts)
	}
	registry[envVar] = s
	return s
}

func (s *setting) EnvVar() string {
	return s.envVar
}

func (s *setting) Setting() string {
	val, ok := os.LookupEnv(s.envVar)
	if s.opts.stripWhitespaces {
		val = strings.TrimSpace(val)
	}
	if !ok || (val == "" && !s.opts.allowEmpty) {
		return s.opts.defaultValue
	}
	return val
}

// BooleanSetting is a setting interpreted as a boolean.
type BooleanSetting struct {
	Setting
	defaultValue bool
}

// RegisterBooleanSetting registers a boolean setting.
func RegisterBooleanSetting(envVar string, defaultValue bool) *BooleanSetting {
	return &BooleanSetting{
		Setting:      RegisterSetting(envVar, WithDefault(strconv.FormatBool(defaultValue)), StripAnyWhitespace()),
		defaultValue: defaultValue,
	}
}

// BooleanSetting returns the parsed value, falling back to the default on garbage.
func (s *BooleanSetting) BooleanSetting() bool {
	v, err := strconv.ParseBool(s.Setting.Setting())
	if err != nil {
		return s.defaultValue
	}
	return v
}

// Registered returns all settings registered so far, keyed by variable name.
func Registered() map[string]Setting {
	out := make(map[string]Setting, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}
