package jsonschema

import (
	"strconv"
)

// evaluateBranch validates node against one combinator branch and reports whether
// the branch matched. The Context is restored before it returns, including when
// the branch panics.
func evaluateBranch(vc *Context, branch *Node, node, root any, at string) (msgs *MessageSet, accepted bool) {
	restore := vc.EnterBranch()
	defer restore()

	msgs = branch.Validate(vc, node, root, at)
	accepted = vc.branchAccepted(msgs)
	return msgs, accepted
}

// AnyOfValidator implements "anyOf": at least one branch must match.
type AnyOfValidator struct {
	path     string
	branches []*Node
}

func (v *AnyOfValidator) Keyword() string { return "anyOf" }

func (v *AnyOfValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	debug(v.Keyword(), v.path, at)

	for _, branch := range v.branches {
		if _, ok := evaluateBranch(vc, branch, node, root, at); ok {
			return NewMessageSet()
		}
	}
	errs := NewMessageSet()
	errs.Add(newMessage(v.Keyword(), at, nil))
	return errs
}

// OneOfValidator implements "oneOf": exactly one branch must match.
type OneOfValidator struct {
	path     string
	branches []*Node
}

func (v *OneOfValidator) Keyword() string { return "oneOf" }

func (v *OneOfValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	debug(v.Keyword(), v.path, at)

	matched := 0
	for _, branch := range v.branches {
		if _, ok := evaluateBranch(vc, branch, node, root, at); ok {
			matched++
		}
	}

	errs := NewMessageSet()
	if matched != 1 {
		errs.Add(newMessage(v.Keyword(), at, map[string]string{"count": strconv.Itoa(matched)}))
	}
	return errs
}

// NotValidator implements "not": the branch must not match.
type NotValidator struct {
	path   string
	branch *Node
}

func (v *NotValidator) Keyword() string { return "not" }

func (v *NotValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	debug(v.Keyword(), v.path, at)

	errs := NewMessageSet()
	if _, ok := evaluateBranch(vc, v.branch, node, root, at); ok {
		errs.Add(newMessage(v.Keyword(), at, nil))
	}
	return errs
}

// AllOfValidator implements "allOf". Every sub-schema must hold, so nothing is
// speculative and the Context passes through untouched.
type AllOfValidator struct {
	path    string
	schemas []*Node
}

func (v *AllOfValidator) Keyword() string { return "allOf" }

func (v *AllOfValidator) Validate(vc *Context, node, root any, at string) *MessageSet {
	errs := NewMessageSet()
	for _, s := range v.schemas {
		errs.AddAll(s.Validate(vc, node, root, at))
	}
	return errs
}
