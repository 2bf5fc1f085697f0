package utils

import (
	"strconv"
)

// ParseID converts a path parameter to a positive id. ok is false for anything
// that is not a positive integer.
func ParseID(s string) (id uint, ok bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
