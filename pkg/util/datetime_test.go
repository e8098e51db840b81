package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToISO8601Str(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ts := time.Date(2030, 1, 1, 23, 30, 0, 0, ist)

	s := TimeToISO8601Str(ts)
	assert.Equal(t, "2030-01-01T18:00:00Z", s)

	back, err := ParseISO8601(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(ts))

	assert.Empty(t, TimeToISO8601Str(time.Time{}))
}
