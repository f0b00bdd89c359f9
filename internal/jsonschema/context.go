package jsonschema

// Context carries the coordination state of one top-level validation.
//
// Combinator keywords evaluate their branches speculatively. While a branch runs,
// InCombinatorBranch is true and keyword validators that can tell whether the
// instance has the shape the branch describes report it through SetBranchMatched.
// Every recursive call that changes the flags restores them before returning, so
// sibling branches and the code after a combinator never observe each other's state.
//
// A Context is not safe for concurrent use. Each top-level validation owns one.
type Context struct {
	inCombinatorBranch bool
	branchMatched      bool
	// matchReported is set when a keyword wrote branchMatched during the current
	// branch, which separates "rejected" from "nothing to say".
	matchReported bool
}

// State is a snapshot of a Context taken by Save.
type State struct {
	InCombinatorBranch bool
	BranchMatched      bool

	matchReported bool
}

// NewContext returns a Context in the default, non-combinator state.
func NewContext() *Context {
	return &Context{}
}

// InCombinatorBranch reports whether the current call runs inside a speculative branch.
func (c *Context) InCombinatorBranch() bool {
	return c.inCombinatorBranch
}

// SetInCombinatorBranch sets the branch flag directly. Combinators use EnterBranch instead.
func (c *Context) SetInCombinatorBranch(v bool) {
	c.inCombinatorBranch = v
}

// BranchMatched reports whether the enclosing branch has structurally matched so far.
func (c *Context) BranchMatched() bool {
	return c.branchMatched
}

// SetBranchMatched records whether the current branch describes the instance. The
// enclosing combinator reads it once the branch returns.
func (c *Context) SetBranchMatched(v bool) {
	c.branchMatched = v
	c.matchReported = true
}

// Save captures the current flags.
func (c *Context) Save() State {
	return State{
		InCombinatorBranch: c.inCombinatorBranch,
		BranchMatched:      c.branchMatched,
		matchReported:      c.matchReported,
	}
}

// Restore puts back flags captured by Save.
func (c *Context) Restore(s State) {
	c.inCombinatorBranch = s.InCombinatorBranch
	c.branchMatched = s.BranchMatched
	c.matchReported = s.matchReported
}

// Reset returns the Context to its default state so it can serve another validation.
func (c *Context) Reset() {
	c.Restore(State{})
}

// EnterBranch marks the start of a speculative combinator branch and returns the
// function that undoes it. Callers defer the returned function so the flags are
// restored on every exit path.
//
//	restore := vc.EnterBranch()
//	defer restore()
func (c *Context) EnterBranch() (restore func()) {
	saved := c.Save()
	c.inCombinatorBranch = true
	c.branchMatched = false
	c.matchReported = false
	return func() { c.Restore(saved) }
}

// suspendBranch clears InCombinatorBranch for recursion into a child instance.
// A child value is not itself a new branch of the enclosing combinator.
func (c *Context) suspendBranch() (restore func()) {
	saved := c.Save()
	c.inCombinatorBranch = false
	return func() { c.Restore(saved) }
}

// branchAccepted reports whether a branch that produced msgs counts as a match.
// A branch matches when it produced no messages and no keyword rejected it.
func (c *Context) branchAccepted(msgs *MessageSet) bool {
	if !msgs.Empty() {
		return false
	}
	return !c.matchReported || c.branchMatched
}
