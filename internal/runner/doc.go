// Package runner talks to the remote execution service that compiles and
// runs submitted solutions.
//
// The service replies with whether the program compiled, whether it timed
// out, its stdout and stderr, and a verdict. ParseResult normalizes the
// reply, which may use either snake_case or camelCase field names. Grade
// computes the same verdict locally from raw process results.
//
// A Client allows one request in flight at a time. Failures never touch the
// editor session; callers surface them and keep the user's code as it is.
package runner
