package api

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntAcceptsNumbersAndNumericStrings(t *testing.T) {
	cases := map[string]FlexInt{
		`500`:                    500,
		`"500"`:                  500,
		`" 42 "`:                 42,
		`12.9`:                   12,
		`-3`:                     -3,
		`"0"`:                    0,
		`-9223372036854775808.0`: math.MinInt64,
	}
	for in, want := range cases {
		var got FlexInt
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got, in)
	}
}

func TestFlexIntRejectsNonNumeric(t *testing.T) {
	for _, in := range []string{`"abc"`, `"12.5"`, `true`, `""`, `9223372036854775808.0`, `-9.3e18`} {
		var got FlexInt
		assert.Error(t, json.Unmarshal([]byte(in), &got), in)
	}
}

func TestEditRequestDistinguishesMissingFields(t *testing.T) {
	var req EditRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id":"3","caption":"hi"}`), &req))
	assert.Equal(t, FlexInt(3), req.ID)
	assert.Nil(t, req.Price)
	require.NotNil(t, req.Caption)
	assert.Equal(t, "hi", *req.Caption)

	req = EditRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"price":"0","caption":""}`), &req))
	require.NotNil(t, req.Price)
	assert.Equal(t, FlexInt(0), *req.Price)
	require.NotNil(t, req.Caption)
	assert.Equal(t, "", *req.Caption)

	req = EditRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"price":1}`), &req))
	assert.Nil(t, req.Caption)
}

func TestFlexIntID(t *testing.T) {
	id, ok := FlexInt(9).ID()
	assert.True(t, ok)
	assert.Equal(t, uint(9), id)

	_, ok = FlexInt(0).ID()
	assert.False(t, ok)
	_, ok = FlexInt(-1).ID()
	assert.False(t, ok)
}
