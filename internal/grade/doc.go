// Package grade runs the per-exercise checks that go beyond comparing
// program output.
//
// Two checks exist. An exercise may name a RequiredToken that must appear in
// the editable window (lexically, so a mention in a comment counts), and it
// may carry a Lua CheckScript defining
//
//	function check(solution)
//	  return ok, "optional message"
//	end
//
// which receives the editable window text. Scripts run in a fresh sandboxed
// state with only the base, string, table and math libraries and a
// contains_token(text, token) helper; file loading and require are removed
// and execution is bounded by a deadline.
package grade
