package sanitize

import (
	"errors"
	"fmt"
)

// ErrRejected is matched by every error Sanitize returns. Callers must treat it
// as "display nothing", never as a partial result.
var ErrRejected = errors.New("sanitize: input rejected")

var (
	// ErrTooLarge reports input larger than the configured byte limit.
	ErrTooLarge = fmt.Errorf("%w: input too large", ErrRejected)
	// ErrTooDeep reports element nesting beyond the configured depth limit.
	ErrTooDeep = fmt.Errorf("%w: nesting too deep", ErrRejected)
	// ErrUnserializable reports a token stream the serializer cannot render safely.
	ErrUnserializable = fmt.Errorf("%w: unserializable token stream", ErrRejected)
	// ErrUnstable reports output that changes every time it is sanitized again.
	ErrUnstable = fmt.Errorf("%w: output did not reach a fixed point", ErrRejected)
)
