package tonemap

import "errors"

// ErrInvalidParams reports a precondition violation: bad anchors, unknown policy or a
// pixel buffer whose length does not match its dimensions.
var ErrInvalidParams = errors.New("invalid parameters")
