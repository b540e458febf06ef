package staging

import "time"

// timeLayout is the persisted timestamp format.
const timeLayout = time.RFC3339

// timeNow is a package-level variable for testability.
// Tests can replace this to control time in assertions.
// Same pattern as feature/time.go.
var timeNow = time.Now
