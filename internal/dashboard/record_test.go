package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("empty and null are empty collections", func(t *testing.T) {
		for _, in := range []string{"", "  ", "null"} {
			got, err := Decode(in)
			require.NoError(t, err)
			assert.Empty(t, got)
		}
	})

	t.Run("amount as string or number", func(t *testing.T) {
		got, err := Decode(`[{"id":"1","type":"positive","amount":"12,50","date":"2021-01-10"},
			{"id":"2","type":"negative","amount":40.5,"date":"2021-01-11","category":"food","name":"Pizza"}]`)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, FlexString("12,50"), got[0].Amount)
		assert.Equal(t, FlexString("40.5"), got[1].Amount)
		assert.Equal(t, "food", got[1].Category)
		assert.Equal(t, "Pizza", got[1].Name)
	})

	t.Run("malformed input is corrupted data", func(t *testing.T) {
		for _, in := range []string{`{`, `{"id":"1"}`, `[{"id":"1","amount":true}]`, `"text"`} {
			_, err := Decode(in)
			assert.ErrorIs(t, err, ErrCorruptedData, in)
		}
	})
}

func TestEncodeRoundTripsStoredShape(t *testing.T) {
	s, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = Encode([]Record{{ID: "1", Type: "positive", Amount: "100", Date: "2021-01-10"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1","type":"positive","amount":"100","date":"2021-01-10"}]`, s)
}
