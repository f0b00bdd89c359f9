package jsonschema

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Message describes one violation of a schema constraint by an instance.
type Message struct {
	Type      string            `json:"type"`
	Path      string            `json:"path"`
	Text      string            `json:"message"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (m Message) String() string {
	return m.Text
}

type messageKey struct {
	typ  string
	path string
	text string
}

func (m Message) key() messageKey {
	return messageKey{typ: m.Type, path: m.Path, text: m.Text}
}

// messageFormats holds the text template for every keyword that reports violations.
// {path} is always available; the other tags come from the message arguments.
var messageFormats = map[string]*fasttemplate.Template{
	"additionalItems":      newFormat("{path}[{index}]: no additional items are allowed in the array"),
	"additionalProperties": newFormat("{path}.{property}: is not defined in the schema and the schema does not allow additional properties"),
	"anyOf":                newFormat("{path}: should be valid to any of the schemas"),
	"const":                newFormat("{path}: must be the constant value {expected}"),
	"contains":             newFormat("{path}: does not contain an element that matches the schema"),
	"dependencies":         newFormat("{path}: has an error with dependencies {property} -> {dependency}"),
	"enum":                 newFormat("{path}: does not have a value in the enumeration {expected}"),
	"exclusiveMaximum":     newFormat("{path}: must have an exclusive maximum value of {limit}"),
	"exclusiveMinimum":     newFormat("{path}: must have an exclusive minimum value of {limit}"),
	"false":                newFormat("{path}: schema for this location is false, no value is allowed"),
	"format":               newFormat("{path}: does not match the {format} pattern"),
	"maxItems":             newFormat("{path}: there must be a maximum of {limit} items in the array"),
	"maxLength":            newFormat("{path}: may only be {limit} characters long"),
	"maxProperties":        newFormat("{path}: may only have a maximum of {limit} properties"),
	"maximum":              newFormat("{path}: must have a maximum value of {limit}"),
	"minItems":             newFormat("{path}: there must be a minimum of {limit} items in the array"),
	"minLength":            newFormat("{path}: must be at least {limit} characters long"),
	"minProperties":        newFormat("{path}: should have a minimum of {limit} properties"),
	"minimum":              newFormat("{path}: must have a minimum value of {limit}"),
	"multipleOf":           newFormat("{path}: must be multiple of {divisor}"),
	"not":                  newFormat("{path}: should not be valid to the schema"),
	"oneOf":                newFormat("{path}: should be valid to one and only one of the schemas, but {count} are valid"),
	"pattern":              newFormat("{path}: does not match the regex pattern {pattern}"),
	"propertyNames":        newFormat("{path}: property name {property} is not valid"),
	"required":             newFormat("{path}: is missing but it is required"),
	"type":                 newFormat("{path}: {found} found, {expected} expected"),
	"uniqueItems":          newFormat("{path}: the items in the array must be unique"),
}

func newFormat(tmpl string) *fasttemplate.Template {
	return fasttemplate.New(tmpl, "{", "}")
}

// newMessage renders the message text for keyword at path.
func newMessage(keyword, path string, args map[string]string) Message {
	tags := make(map[string]interface{}, len(args)+1)
	for k, v := range args {
		tags[k] = v
	}
	tags["path"] = path

	text := keyword + " violated at " + path
	if tmpl, ok := messageFormats[keyword]; ok {
		text = tmpl.ExecuteString(tags)
	}
	return Message{
		Type:      keyword,
		Path:      path,
		Text:      text,
		Arguments: args,
	}
}

// MessageSet is an insertion-ordered set of messages. Two messages with the same
// type, path and text are the same violation and are stored once.
type MessageSet struct {
	seen  map[messageKey]struct{}
	items []Message
}

// NewMessageSet returns an empty set.
func NewMessageSet() *MessageSet {
	return &MessageSet{seen: make(map[messageKey]struct{})}
}

// Add appends m unless an identical message is already present.
// It reports whether the set changed.
func (s *MessageSet) Add(m Message) bool {
	k := m.key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, m)
	return true
}

// AddAll merges other into s, keeping the order in which other saw its messages.
func (s *MessageSet) AddAll(other *MessageSet) {
	if other == nil {
		return
	}
	for _, m := range other.items {
		s.Add(m)
	}
}

// Len returns the number of distinct messages.
func (s *MessageSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Empty reports whether the set holds no messages.
func (s *MessageSet) Empty() bool {
	return s.Len() == 0
}

// Messages returns a copy of the messages in insertion order.
func (s *MessageSet) Messages() []Message {
	if s == nil {
		return []Message{}
	}
	out := make([]Message, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MessageSet) String() string {
	if s.Empty() {
		return ""
	}
	var b strings.Builder
	for _, m := range s.items {
		b.WriteString("- ")
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalJSON encodes the set as an array of messages.
func (s *MessageSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Messages())
}
