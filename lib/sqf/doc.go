// Package sqf implements the literal syntax the game engine uses to exchange
// structured values as text: nested arrays, double or single quoted strings
// (quotes escaped by doubling), numbers and the keywords true, false and nil.
//
// The extension answers requests with such literals. Parse turns them into
// plain Go values without evaluating any code, and Format produces the
// inverse encoding for requests and for the extension's own responses.
//
//	v, err := sqf.Parse(`[1,"two",[true,nil]]`)
//	// v == []any{1.0, "two", []any{true, nil}}
package sqf
