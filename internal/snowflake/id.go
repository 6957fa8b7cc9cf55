// Package snowflake provides time-ordered 64 bit ids.
//
// Ids embed their creation time, so sorting by id sorts by creation
// time with a random tiebreak within the same millisecond.
package snowflake

import (
	"math/rand"
	"strconv"
	"time"
)

// ID is a 64 bit id. The top 48 bits are the creation time in
// milliseconds since the epoch, the bottom 16 bits are random.
type ID uint64

// Now returns a new ID for the current time.
func Now() ID {
	return TimeToID(time.Now())
}

// TimeToID converts a time.Time to an ID.
func TimeToID(ts time.Time) ID {
	return ID(uint64(ts.UnixNano()/int64(time.Millisecond))<<16 | uint64(rand.Intn(1<<16)))
}

// ToTime converts an ID back to the time it was created.
func (id ID) ToTime() time.Time {
	return time.Unix(0, int64(id>>16)*1e6).UTC()
}

// Parse converts the decimal string form of an ID back to an ID.
func Parse(s string) (ID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	return ID(id), err
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
