package gc

import "errors"

// ErrRefobNotOwned is returned by operations that require the caller to
// currently hold the given refob in refs (e.g. CreateRef), when it does
// not.
var ErrRefobNotOwned = errors.New("gc: refob not held in refs")
