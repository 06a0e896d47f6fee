package engine

import (
	"fmt"
	"strconv"
	"sync"
)

// OptionType is the declared type of a configuration option.
type OptionType uint8

const (
	CheckOption OptionType = iota
	SpinOption
	StringOption
	ComboOption
)

func (t OptionType) String() string {
	switch t {
	case CheckOption:
		return "check"
	case SpinOption:
		return "spin"
	case StringOption:
		return "string"
	case ComboOption:
		return "combo"
	default:
		return "unknown"
	}
}

// Option is one declared configuration value. The change hook, if set, runs
// synchronously inside Set after the value is updated, so callers may assume
// the side effect (hash resize, pool resize) is complete when Set returns.
type Option struct {
	Name    string
	Type    OptionType
	Default string
	Min     int      // spin only
	Max     int      // spin only
	Vars    []string // combo only

	// searchLocked options reject writes while a search runs, because their
	// hooks resize resources the kernel holds references into.
	searchLocked bool

	value    string
	onChange func(o *Option) error
}

// StringValue returns the current value as text.
func (o *Option) StringValue() string {
	return o.value
}

// IntValue returns the current value of a spin option.
func (o *Option) IntValue() int {
	v, _ := strconv.Atoi(o.value)
	return v
}

// BoolValue returns the current value of a check option.
func (o *Option) BoolValue() bool {
	return o.value == "true"
}

// ProtocolString renders the option declaration line for the text protocol.
func (o *Option) ProtocolString() string {
	switch o.Type {
	case SpinOption:
		return fmt.Sprintf("option name %s type spin default %s min %d max %d", o.Name, o.Default, o.Min, o.Max)
	case ComboOption:
		s := fmt.Sprintf("option name %s type combo default %s", o.Name, o.Default)
		for _, v := range o.Vars {
			s += " var " + v
		}
		return s
	default:
		return fmt.Sprintf("option name %s type %s default %s", o.Name, o.Type, o.Default)
	}
}

// Options is the registry of declared options. Lookup is exact-match by name.
type Options struct {
	mu     sync.Mutex
	order  []string
	byName map[string]*Option

	// locked reports whether search-immutable options are currently frozen.
	locked func() bool
}

func newOptions(locked func() bool) *Options {
	return &Options{
		byName: make(map[string]*Option),
		locked: locked,
	}
}

// declare registers an option. Called once per option at engine construction.
func (r *Options) declare(o *Option) {
	o.value = o.Default
	r.byName[o.Name] = o
	r.order = append(r.order, o.Name)
}

// Set parses and applies a value to the named option. The option's change
// hook has completed when Set returns without error.
func (r *Options) Set(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}

	if o.searchLocked && r.locked() {
		return fmt.Errorf("%w: %q", ErrOptionLocked, name)
	}

	parsed, err := o.parse(value)
	if err != nil {
		return err
	}

	prev := o.value
	o.value = parsed
	if o.onChange != nil {
		if err := o.onChange(o); err != nil {
			o.value = prev
			return err
		}
	}
	return nil
}

func (o *Option) parse(value string) (string, error) {
	switch o.Type {
	case CheckOption:
		if value != "true" && value != "false" {
			return "", fmt.Errorf("%w: %q is not a boolean for %q", ErrInvalidOptionValue, value, o.Name)
		}
		return value, nil
	case SpinOption:
		v, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not an integer for %q", ErrInvalidOptionValue, value, o.Name)
		}
		if v < o.Min || v > o.Max {
			return "", fmt.Errorf("%w: %d out of range [%d, %d] for %q", ErrInvalidOptionValue, v, o.Min, o.Max, o.Name)
		}
		return value, nil
	case ComboOption:
		for _, v := range o.Vars {
			if v == value {
				return value, nil
			}
		}
		return "", fmt.Errorf("%w: %q is not a valid choice for %q", ErrInvalidOptionValue, value, o.Name)
	default:
		return value, nil
	}
}

// Get returns the current value of a declared option.
func (r *Options) Get(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return o.value, nil
}

// GetInt returns the current value of a declared spin option, or 0 for an
// unknown name.
func (r *Options) GetInt(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.byName[name]; ok {
		return o.IntValue()
	}
	return 0
}

// GetBool returns the current value of a declared check option.
func (r *Options) GetBool(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.byName[name]; ok {
		return o.BoolValue()
	}
	return false
}

// List returns the declared options in declaration order.
func (r *Options) List() []*Option {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Option, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
