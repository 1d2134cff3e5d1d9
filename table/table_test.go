package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/ripple/value"
)

func sampleTable() value.Value {
	return value.OfTable(value.Tab{
		Header: []string{"name", "score"},
		Rows: []value.Row{
			{value.OfString("a"), value.OfInt(1)},
			{value.OfString("b"), value.OfInt(2)},
			{value.OfString("c"), value.OfInt(3)},
		},
	})
}

func Test_Col(t *testing.T) {
	col, err := Col(sampleTable(), 1)
	require.Nil(t, err)
	assert.Equal(t, value.OfList([]value.Value{value.OfInt(1), value.OfInt(2), value.OfInt(3)}), col)
}

func Test_Col_outOfRange(t *testing.T) {
	_, err := Col(sampleTable(), 2)
	require.NotNil(t, err)
	assert.Equal(t, ErrRange, err.Kind)
}

func Test_Col_noHeaderUsesRowWidth(t *testing.T) {
	tab := value.OfTable(value.Tab{
		Rows: []value.Row{
			{value.OfInt(1), value.OfInt(2)},
			{value.OfInt(3), value.OfInt(4)},
		},
	})
	col, err := Col(tab, 1)
	require.Nil(t, err)
	assert.Equal(t, value.OfList([]value.Value{value.OfInt(2), value.OfInt(4)}), col)
}

func Test_Row(t *testing.T) {
	r, err := Row(sampleTable(), 1)
	require.Nil(t, err)
	assert.Equal(t, value.OfList([]value.Value{value.OfString("b"), value.OfInt(2)}), r)
}

func Test_Row_outOfRange(t *testing.T) {
	_, err := Row(sampleTable(), 99)
	require.NotNil(t, err)
	assert.Equal(t, ErrRange, err.Kind)
}

func Test_Len(t *testing.T) {
	n, err := Len(sampleTable())
	require.Nil(t, err)
	assert.Equal(t, 3, n)
}

func Test_Sum_allInt(t *testing.T) {
	col, _ := Col(sampleTable(), 1)
	sum, err := Sum(col)
	require.Nil(t, err)
	assert.Equal(t, value.OfInt(6), sum)
}

func Test_Sum_mixedPromotesToFloat(t *testing.T) {
	l := value.OfList([]value.Value{value.OfInt(1), value.OfFloat(2.5)})
	sum, err := Sum(l)
	require.Nil(t, err)
	assert.Equal(t, value.OfFloat(3.5), sum)
}

func Test_Avg_empty(t *testing.T) {
	avg, err := Avg(value.OfList(nil))
	require.Nil(t, err)
	assert.Equal(t, value.OfFloat(0.0), avg)
}

func Test_MinMax(t *testing.T) {
	col, _ := Col(sampleTable(), 1)
	min, err := Min(col)
	require.Nil(t, err)
	assert.Equal(t, value.OfInt(1), min)

	max, err := Max(col)
	require.Nil(t, err)
	assert.Equal(t, value.OfInt(3), max)
}

func Test_CountIf(t *testing.T) {
	col, _ := Col(sampleTable(), 1)
	n, err := CountIf(col, func(v value.Value) (bool, error) {
		return v.Int() >= 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, value.OfInt(2), n)
}

func Test_Filter(t *testing.T) {
	col, _ := Col(sampleTable(), 1)
	out, err := Filter(col, func(v value.Value) (bool, error) {
		return v.Int() >= 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, value.OfList([]value.Value{value.OfInt(2), value.OfInt(3)}), out)
}
