package jsonschema

// PropertyEntry pairs a declared property name with its compiled schema.
type PropertyEntry struct {
	Name   string
	Schema *Node
}

// PropertiesValidator implements the "properties" keyword.
//
// Inside a combinator branch it also decides whether the branch matches: a
// declared property that is present marks the branch matched, an absent one
// rejects the branch and stops validation of this object.
type PropertiesValidator struct {
	path    string
	owner   *Node
	entries []PropertyEntry
}

// NewPropertiesValidator builds the keyword for owner. Entries keep the order in
// which the schema declared them.
func NewPropertiesValidator(path string, owner *Node, entries []PropertyEntry) *PropertiesValidator {
	return &PropertiesValidator{path: path, owner: owner, entries: entries}
}

func (p *PropertiesValidator) Keyword() string { return "properties" }

// Entries returns the declared properties in declaration order.
func (p *PropertiesValidator) Entries() []PropertyEntry {
	out := make([]PropertyEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

func (p *PropertiesValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	debug(p.Keyword(), p.path, at)

	errs := NewMessageSet()
	obj, _ := node.(map[string]any)

	for _, entry := range p.entries {
		value, present := obj[entry.Name]

		if present {
			inBranch := vc.InCombinatorBranch()
			if inBranch {
				vc.SetBranchMatched(true)
			}
			errs.AddAll(descend(vc, entry.Schema, value, root, at+"."+entry.Name))
			if inBranch {
				vc.SetBranchMatched(true)
			}
			continue
		}

		if vc.InCombinatorBranch() {
			// the branch does not describe this instance; the combinator drops its output
			vc.SetBranchMatched(false)
			return NewMessageSet()
		}

		if rv, ok := p.owner.RequiredValidator(); ok {
			errs.AddAll(rv.Validate(vc, node, root, at))
		}
	}

	return errs
}
