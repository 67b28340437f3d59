package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesValidate(t *testing.T) {
	cases := []struct {
		name string
		in   Coordinates
		ok   bool
	}{
		{"eiffel tower", Coordinates{48.8584, 2.2945}, true},
		{"poles and antimeridian", Coordinates{-90, 180}, true},
		{"latitude too high", Coordinates{90.1, 0}, false},
		{"longitude too low", Coordinates{0, -180.5}, false},
		{"nan", Coordinates{math.NaN(), 0}, false},
		{"inf", Coordinates{0, math.Inf(1)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLandmarkCoordinatesRoundTrip(t *testing.T) {
	lm := &Landmark{}
	lm.SetCoordinates(Coordinates{Latitude: 27.1751, Longitude: 78.0421})
	assert.Equal(t, Coordinates{27.1751, 78.0421}, lm.Coordinates())
}

func TestOwnerID(t *testing.T) {
	var owned []Owned = []Owned{
		&Landmark{UserID: "u1"},
		&VisitingPlan{UserID: "u1"},
		&VisitLog{UserID: "u1"},
	}
	for _, o := range owned {
		assert.Equal(t, "u1", o.OwnerID())
	}
}

func TestAccountBaseAssignsUUID(t *testing.T) {
	u := &UserModel{}
	require.NoError(t, u.BeforeCreate(nil))
	assert.Len(t, u.ID, 36)

	keep := &UserModel{AccountBase: AccountBase{ID: "fixed"}}
	require.NoError(t, keep.BeforeCreate(nil))
	assert.Equal(t, "fixed", keep.ID)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "a@b.c", (&UserModel{Email: "a@b.c"}).DisplayName())
	assert.Equal(t, "Ada", (&UserModel{Email: "a@b.c", Name: "Ada"}).DisplayName())
}
