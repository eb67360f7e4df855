package tinylog

import "github.com/coredump-systems/tinylog/internal/wire"

// Directive selects the (base, fill) pair a Session.WithFormat call
// applies to exactly the next pushed numeric atom, re-exported so callers
// never import internal/wire directly.
type Directive = wire.Directive

// Base enumerates the numeric rendering bases a Directive may select.
type Base = wire.Base

const (
	BaseNone Base = wire.BaseNone
	Binary   Base = wire.Binary
	Decimal  Base = wire.Decimal
	Hex      Base = wire.Hex
)

// FillStaticRef is the sentinel Fill value marking "the next string
// argument is a static reference, not a copy" — equivalent to calling
// PushStaticString directly, exposed here for callers building a
// Directive value generically.
const FillStaticRef = wire.FillStaticRef
