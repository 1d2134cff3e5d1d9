package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Equal_sameTagSameValue(t *testing.T) {
	assert.True(t, OfInt(3).Equal(OfInt(3)))
	assert.True(t, OfFloat(1.5).Equal(OfFloat(1.5)))
	assert.True(t, OfBool(true).Equal(OfBool(true)))
	assert.True(t, OfString("hi").Equal(OfString("hi")))
	assert.True(t, NullValue.Equal(NullValue))
}

func Test_Equal_differentTagNeverEqual(t *testing.T) {
	// int 1 and float 1.0 have different tags and are not Equal, even
	// though they're numerically the same; change detection in the engine
	// operates on the raw tagged value, not a numerically-coerced one.
	assert.False(t, OfInt(1).Equal(OfFloat(1.0)))
}

func Test_Equal_nanAlwaysDifferent(t *testing.T) {
	nan := OfFloat(math.NaN())
	assert.False(t, nan.Equal(nan))
	assert.False(t, nan.Equal(OfFloat(1.0)))
}

func Test_Equal_list(t *testing.T) {
	a := OfList([]Value{OfInt(1), OfInt(2)})
	b := OfList([]Value{OfInt(1), OfInt(2)})
	c := OfList([]Value{OfInt(1), OfInt(3)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func Test_AsFloat_promotion(t *testing.T) {
	assert.Equal(t, 3.0, OfInt(3).AsFloat())
	assert.Equal(t, 3.5, OfFloat(3.5).AsFloat())
}

func Test_String_rendering(t *testing.T) {
	assert.Equal(t, "3", OfInt(3).String())
	assert.Equal(t, "true", OfBool(true).String())
	assert.Equal(t, "hi", OfString("hi").String())
	assert.Equal(t, "null", NullValue.String())
	assert.Equal(t, "[1, 2]", OfList([]Value{OfInt(1), OfInt(2)}).String())
}
