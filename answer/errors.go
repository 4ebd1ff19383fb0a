package answer

import "errors"

// ErrModelRequired is returned when a Generator is built without a chat model.
var ErrModelRequired = errors.New("chat model is required")
