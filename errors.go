package dockhttp

import (
	"github.com/asdine/dockhttp/internal/transport"
	"github.com/asdine/dockhttp/internal/wire"
)

// ErrProtocol wraps malformed-HTTP errors: bad status or header lines, bad
// chunk lengths, missing CRLFs, short chunk bodies. Raw-stream frame errors
// do not wrap it: a truncated frame surfaces as the underlying read error,
// and frames with an unknown stream id are discarded.
var ErrProtocol = wire.ErrProtocol

// ErrUnsupportedScheme is returned by NewClient for any client URI scheme
// other than "unix".
var ErrUnsupportedScheme = transport.ErrUnsupportedScheme
