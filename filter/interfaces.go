package filter

// Matcher decides whether a result item is kept
type Matcher interface {
	// Match evaluates the filter against one item. key is the mapping key
	// or the sequence index of the item.
	Match(key, item any) (bool, error)
}

// Compiler compiles filter expressions into matchers
type Compiler interface {
	Compile(expression string) (*Filter, error)
}
