package cache

import "errors"

// ErrInvalidKey is returned by Set when given an invalid identifier — by
// default, the zero value of the key type. It is the store's only error
// condition: absent and reclaimed entries are ordinary "not found" results,
// never errors.
var ErrInvalidKey = errors.New("invalid key")
