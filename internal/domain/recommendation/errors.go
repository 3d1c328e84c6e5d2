package recommendation

import "errors"

// ErrEmptyWeeklySet marks a weekly batch that produced no suggestions at
// all; such a set is never persisted.
var ErrEmptyWeeklySet = errors.New("weekly meal set must contain at least one suggestion")
