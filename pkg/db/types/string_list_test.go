package dbtypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringListScan(t *testing.T) {
	var list StringList
	require.NoError(t, list.Scan(`["a.jpg","b.jpg"]`))
	require.Equal(t, StringList{"a.jpg", "b.jpg"}, list)

	require.NoError(t, list.Scan([]byte(`[]`)))
	require.Empty(t, list)

	require.NoError(t, list.Scan(nil))
	require.NotNil(t, list)

	require.Error(t, list.Scan(42))
	require.Error(t, list.Scan("{not json"))
}

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	require.Equal(t, "[]", v)

	v, err = StringList{"red", "blue"}.Value()
	require.NoError(t, err)
	require.Equal(t, `["red","blue"]`, v)
}
