package jsonnum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		Lat  Float `json:"latitude"`
		Lng  Float `json:"longitude"`
		Alt  Float `json:"altitude"`
		Zoom Float `json:"zoom"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"latitude":48.8584,"longitude":" 2.2945 ","zoom":null}`), &body))
	assert.Equal(t, Float{Value: 48.8584, Set: true}, body.Lat)
	assert.Equal(t, Float{Value: 2.2945, Set: true}, body.Lng)
	assert.False(t, body.Alt.Set)
	assert.False(t, body.Zoom.Set)
}

func TestFloatRejectsGarbage(t *testing.T) {
	var f Float
	assert.Error(t, json.Unmarshal([]byte(`"north"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestUint(t *testing.T) {
	var body struct {
		A Uint `json:"a"`
		B Uint `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":7,"b":"12"}`), &body))
	assert.EqualValues(t, 7, body.A)
	assert.EqualValues(t, 12, body.B)

	var u Uint
	assert.Error(t, json.Unmarshal([]byte(`-1`), &u))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &u))
}
