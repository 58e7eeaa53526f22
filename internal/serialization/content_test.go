package serialization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("null"))
	assert.True(t, IsEmpty("  null\n"))
	assert.False(t, IsEmpty("[]"))
	assert.False(t, IsEmpty("0"))
}

func TestArrayRoundTrip(t *testing.T) {
	children := []string{"[[1,2],[3,4]]", "null", `["[0.5]"]`}

	content, err := EncodeArray(children)
	require.NoError(t, err)

	decoded, err := DecodeArray(content, "pipe")
	require.NoError(t, err)
	assert.Equal(t, children, decoded)

	again, err := EncodeArray(decoded)
	require.NoError(t, err)
	assert.Equal(t, content, again)
}

func TestEncodeEmptyArray(t *testing.T) {
	content, err := EncodeArray(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", content)

	decoded, err := DecodeArray("", "pipe")
	require.NoError(t, err)
	assert.Empty(t, decoded)
	assert.Equal(t, "", At(decoded, 3))
}

func TestDecodeArrayNullEntries(t *testing.T) {
	decoded, err := DecodeArray(`["a", null]`, "split")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, decoded)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeArray("[1, 2", "pipe")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedContent)

	var ce *ContentError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "pipe", ce.Layer)
}

func TestEncodeNotFinite(t *testing.T) {
	_, err := Encode([]float64{math.NaN()})
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestBoundsRoundTrip(t *testing.T) {
	values := []float64{math.Inf(1), 0.25, math.Inf(-1)}
	content, err := Encode(EncodeBounds(values))
	require.NoError(t, err)
	assert.Equal(t, "[null,0.25,null]", content)

	var restored []*float64
	require.NoError(t, Decode(content, "guard", &restored))
	assert.Equal(t, []float64{-1, 0.25, -1}, DecodeBounds(restored, -1))
}

func TestValidateShapes(t *testing.T) {
	assert.NoError(t, ValidateVector("bias", []float64{1, 2}, 2))
	assert.ErrorIs(t, ValidateVector("bias", []float64{1}, 2), ErrShapeMismatch)
	assert.ErrorIs(t, ValidateVector("bias", []float64{math.Inf(1)}, 1), ErrNotFinite)

	assert.NoError(t, ValidateMatrix("dense", [][]float64{{1, 2}, {3, 4}}, 2, 2))
	assert.ErrorIs(t, ValidateMatrix("dense", [][]float64{{1, 2}}, 2, 2), ErrShapeMismatch)
	assert.ErrorIs(t, ValidateMatrix("dense", [][]float64{{1, 2}, {3}}, 2, 2), ErrShapeMismatch)
}
