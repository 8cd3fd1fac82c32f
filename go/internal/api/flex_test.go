package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	var v struct {
		A flexString `json:"a"`
		B flexString `json:"b"`
		C flexString `json:"c"`
		D flexString `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12","b":7,"c":null}`), &v))

	assert.Equal(t, flexString{Value: "12", Set: true}, v.A)
	assert.Equal(t, flexString{Value: "7", Set: true}, v.B)
	assert.False(t, v.C.Set)
	assert.False(t, v.D.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestFlexStringInt(t *testing.T) {
	n, err := flexString{Value: " 42 "}.Int()
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = flexString{Value: "30.0"}.Int()
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	_, err = flexString{Value: "2.5"}.Int()
	assert.Error(t, err)
	_, err = flexString{Value: ""}.Int()
	assert.Error(t, err)
}
