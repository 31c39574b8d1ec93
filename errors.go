package earleygo

import "fmt"

// GrammarInvalidError is returned when a grammar fails validation at build
// time: references to undefined nonterminals, an empty grammar, or a missing
// start rule.
type GrammarInvalidError struct {
	Reason string
}

func (e *GrammarInvalidError) Error() string {
	return fmt.Sprintf("grammar invalid: %s", e.Reason)
}

// OutOfRangeItemError is returned when an item is requested at a dot
// position past the end of its rule's right-hand side. It indicates a
// programmer error in the caller rather than a malformed grammar or input.
type OutOfRangeItemError struct {
	Rule int
	Dot  int
	RHS  int
}

func (e *OutOfRangeItemError) Error() string {
	return fmt.Sprintf("dot %d out of range for rule %d with %d rhs symbols", e.Dot, e.Rule, e.RHS)
}

// ParseError is returned when recognition fails: the scan bucket for the
// current token was empty at Position. Expected lists the terminal ids that
// would have let the parse continue.
type ParseError struct {
	Position int
	Expected []Sym
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: expected one of %v", e.Position, e.Expected)
}

// UnexpectedCompletionError indicates that a completed non-start-symbol item
// had no predicting item in its origin column. This signals corruption of
// the chart or the transition index, not a property of the input; it is
// returned rather than panicked so that a long-lived host process can log
// and discard the offending engine instead of crashing.
type UnexpectedCompletionError struct {
	Nonterminal Sym
	Origin      int
	Position    int
}

func (e *UnexpectedCompletionError) Error() string {
	return fmt.Sprintf("unexpected completion of %s: no predictor found in column %d (at position %d)",
		e.Nonterminal, e.Origin, e.Position)
}
