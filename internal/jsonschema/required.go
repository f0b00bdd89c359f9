package jsonschema

// RequiredValidator implements the "required" keyword. It is a pure function of the
// instance and the declared names and never reads the Context.
type RequiredValidator struct {
	path  string
	names []string
}

func NewRequiredValidator(path string, names []string) *RequiredValidator {
	return &RequiredValidator{path: path, names: names}
}

func (r *RequiredValidator) Keyword() string { return "required" }

// Names returns the required property names in declaration order.
func (r *RequiredValidator) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *RequiredValidator) Validate(_ *Context, node, _ any, at string) *MessageSet {
	errs := NewMessageSet()
	obj, ok := node.(map[string]any)
	if !ok {
		return errs
	}
	for _, name := range r.names {
		if _, present := obj[name]; !present {
			errs.Add(newMessage(r.Keyword(), at+"."+name, map[string]string{"property": name}))
		}
	}
	return errs
}
