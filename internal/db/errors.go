package db

import "errors"

// ErrNoReplies is returned when the reply log is empty.
var ErrNoReplies = errors.New("no replies recorded")
