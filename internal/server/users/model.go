// Package users is the user registry: the durable mapping from username to
// the public commitment pair registered for it. The registry never sees a
// password or a secret scalar, only the pair (y1, y2).
package users

import "time"

// User is one registration record. Y1 and Y2 are fixed-width big-endian
// encodings of the commitment pair, validated against the parameter set
// named by ParamSet before they are stored.
type User struct {
	ID        string
	UserName  string
	Y1        []byte
	Y2        []byte
	ParamSet  string
	CreatedAt time.Time
}
