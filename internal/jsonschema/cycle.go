package jsonschema

import (
	"fmt"
	"sort"
)

// sameInstanceTargets returns the nodes v applies to the very instance it was given.
func sameInstanceTargets(v Validator) []*Node {
	switch t := v.(type) {
	case *RefValidator:
		return []*Node{t.target}
	case *AllOfValidator:
		return t.schemas
	case *AnyOfValidator:
		return t.branches
	case *OneOfValidator:
		return t.branches
	case *NotValidator:
		return []*Node{t.branch}
	case *DependenciesValidator:
		var out []*Node
		for _, d := range t.entries {
			if d.schema != nil {
				out = append(out, d.schema)
			}
		}
		return out
	}
	return nil
}

// checkCycles rejects a schema in which $ref and in-place applicators lead back to a
// node before any keyword descends into a child instance. Validation of such a
// schema would recurse on the same value forever.
func checkCycles(nodes map[string]*Node) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*Node]int, len(nodes))

	var visit func(n *Node) error
	visit = func(n *Node) error {
		switch state[n] {
		case visiting:
			return fmt.Errorf("%s: schema refers back to itself without descending into the instance", n.Path())
		case done:
			return nil
		}
		state[n] = visiting
		for _, v := range n.validators {
			for _, target := range sameInstanceTargets(v) {
				if err := visit(target); err != nil {
					return err
				}
			}
		}
		state[n] = done
		return nil
	}

	paths := make([]string, 0, len(nodes))
	for p := range nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := visit(nodes[p]); err != nil {
			return err
		}
	}
	return nil
}
