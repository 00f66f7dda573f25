package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_EnterosComoNumber(t *testing.T) {
	s, err := encodeValue(int64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	v, err := decodeValue(s)
	require.NoError(t, err)
	assert.Equal(t, json.Number("42"), v)

	s, err = encodeValue("GREEN")
	require.NoError(t, err)
	v, err = decodeValue(s)
	require.NoError(t, err)
	assert.Equal(t, "GREEN", v)

	_, err = decodeValue("{roto")
	assert.Error(t, err)
}

func TestNewMirror_ClavePorDefecto(t *testing.T) {
	m := NewMirror(nil, "")
	assert.Equal(t, DefaultKey, m.key)
	assert.Equal(t, "x", NewMirror(nil, "x").key)
}
