// Package config provides fenceline's layered configuration.
//
// Values are resolved from, in increasing precedence, built-in defaults, an
// optional TOML file (which may @include others) and FENCELINE_ environment
// variables:
//
//	cfg := config.New(config.WithFile("fenceline.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	opts := cfg.Guard().Options()
//
// Settings are addressed by dotted paths such as "guard.topLockLines". Typed
// section accessors (Guard, Runner, Catalog, Logging) return snapshot
// structs; Load validates them and reports bad values as ErrInvalidValue.
package config
