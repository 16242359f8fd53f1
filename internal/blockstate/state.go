// Package blockstate holds block state snapshots: a block's explicit
// properties plus the connectivity side-channel the renderer reads.
package blockstate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/blockctm/pkg/ctm"
)

// NoProperties is the property string of a state without properties.
const NoProperties = "normal"

// Property is one explicit name=value pair of a state.
type Property struct {
	Name  string
	Value string
}

// State is an immutable block state. The zero value is not useful; use New.
type State struct {
	block string
	props []Property
	key   string

	conns    ctm.Connections
	hasConns bool
}

// New creates a state for block with the given properties.
func New(block string, props map[string]string) *State {
	list := make([]Property, 0, len(props))
	for name, value := range props {
		list = append(list, Property{Name: name, Value: value})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return &State{
		block: block,
		props: list,
		key:   PropertyString(list),
	}
}

// PropertyString serializes sorted properties as name=value pairs joined by
// commas, or NoProperties when there are none.
func PropertyString(props []Property) string {
	if len(props) == 0 {
		return NoProperties
	}
	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Block returns the block type name.
func (s *State) Block() string {
	return s.block
}

// Properties returns the explicit properties sorted by name. Callers must not
// modify the slice.
func (s *State) Properties() []Property {
	return s.props
}

// Value returns the value of the named property.
func (s *State) Value(name string) (string, bool) {
	i := sort.Search(len(s.props), func(i int) bool { return s.props[i].Name >= name })
	if i < len(s.props) && s.props[i].Name == name {
		return s.props[i].Value, true
	}
	return "", false
}

// PropertyString returns the canonical property string, computed once at
// construction. Connectivity never contributes to it.
func (s *State) PropertyString() string {
	return s.key
}

// WithConnections returns a copy of s carrying connectivity c.
func (s *State) WithConnections(c ctm.Connections) *State {
	ext := *s
	ext.conns = c
	ext.hasConns = true
	return &ext
}

// Connections implements ctm.Source. A nil state has no connectivity.
func (s *State) Connections() (ctm.Connections, bool) {
	if s == nil {
		return 0, false
	}
	return s.conns, s.hasConns
}

// Clean returns s without its connectivity side-channel.
func (s *State) Clean() *State {
	if !s.hasConns {
		return s
	}
	clean := *s
	clean.conns = 0
	clean.hasConns = false
	return &clean
}

func (s *State) String() string {
	if len(s.props) == 0 {
		return s.block
	}
	return fmt.Sprintf("%s[%s]", s.block, s.key)
}

// ParseState parses "block" or "block[name=value,...]".
func ParseState(text string) (*State, error) {
	open := strings.IndexByte(text, '[')
	if open < 0 {
		if text == "" {
			return nil, fmt.Errorf("empty state")
		}
		return New(text, nil), nil
	}
	if !strings.HasSuffix(text, "]") || open == 0 {
		return nil, fmt.Errorf("malformed state %q", text)
	}
	block := text[:open]
	body := text[open+1 : len(text)-1]
	props := make(map[string]string)
	if body != "" {
		for _, pair := range strings.Split(body, ",") {
			name, value, ok := strings.Cut(pair, "=")
			if !ok || name == "" {
				return nil, fmt.Errorf("malformed property %q in %q", pair, text)
			}
			if _, dup := props[name]; dup {
				return nil, fmt.Errorf("duplicate property %q in %q", name, text)
			}
			props[name] = value
		}
	}
	return New(block, props), nil
}

// Mapper derives the string a state's model variant is looked up by. Only
// explicit properties may contribute; connectivity never does.
type Mapper interface {
	PropertyString(s *State) string
}

// DefaultMapper keys a state by its canonical property string.
type DefaultMapper struct{}

// PropertyString implements Mapper.
func (DefaultMapper) PropertyString(s *State) string {
	return s.PropertyString()
}
