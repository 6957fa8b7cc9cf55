package snowflake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIDRoundTrip(t *testing.T) {
	require := require.New(t)

	ts := time.Date(2024, 5, 17, 12, 34, 56, 789e6, time.UTC)
	id := TimeToID(ts)
	require.Equal(ts, id.ToTime())
}

func TestIDOrdering(t *testing.T) {
	require := require.New(t)

	earlier := TimeToID(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := TimeToID(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	require.Less(earlier, later)
}

func TestParse(t *testing.T) {
	require := require.New(t)

	id := Now()
	parsed, err := Parse(id.String())
	require.NoError(err)
	require.Equal(id, parsed)

	_, err = Parse("not-an-id")
	require.Error(err)
}
