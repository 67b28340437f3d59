package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse(" 2025-06-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = Parse("2025-06-01T23:30:00-01:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC), d)

	_, err = Parse("")
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = Parse("June 1st")
	assert.Error(t, err)
}
