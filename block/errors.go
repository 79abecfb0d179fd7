package block

import "errors"

// ErrSegmentExhausted is wrapped by the forward/reverse bit readers
// when a code-block's declared segment runs out of bits before the
// cleanup pass driver expected it to.
var ErrSegmentExhausted = errors.New("block: segment exhausted")
