package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSome_NonFinite(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.False(t, Some(math.Inf(-1)).Valid)
	assert.True(t, Some(0).Valid)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, Some(0.5), Ratio(1, 2))
	assert.False(t, Ratio(1, 0).Valid)
	assert.False(t, Ratio(0, 0).Valid)
}

func TestMetric_Scale(t *testing.T) {
	assert.Equal(t, Some(2), Some(10).Scale(0.2))
	assert.False(t, Missing().Scale(3).Valid)
}

func TestMetric_OrElse(t *testing.T) {
	assert.Equal(t, 4.0, Some(4).OrElse(-1))
	assert.Equal(t, -1.0, Missing().OrElse(-1))
}

func TestMetric_JSON(t *testing.T) {
	type row struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}

	data, err := json.Marshal(row{A: Some(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(data))

	var decoded row
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":3}`), &decoded))
	assert.False(t, decoded.A.Valid)
	assert.Equal(t, Some(3), decoded.B)
}

func TestMetric_String(t *testing.T) {
	assert.Equal(t, "missing", Missing().String())
	assert.Equal(t, "0.25", Some(0.25).String())
}
