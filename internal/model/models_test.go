package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryRefUnmarshalBareID(t *testing.T) {
	t.Parallel()

	var item MenuItem
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m1","name":"Flat White","price":4.5,"category":"c1"}`), &item))
	require.Equal(t, "c1", item.Category.ID())
	require.Equal(t, "c1", item.Category.Label())
	require.Nil(t, item.Category.Embedded())
}

func TestCategoryRefUnmarshalEmbedded(t *testing.T) {
	t.Parallel()

	var item MenuItem
	raw := `{"_id":"m1","name":"Flat White","price":4.5,"category":{"_id":"c1","name":"Drinks","description":"Beverages"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	require.Equal(t, "c1", item.Category.ID())
	require.Equal(t, "Drinks", item.Category.Label())
	require.NotNil(t, item.Category.Embedded())
	require.Equal(t, "Beverages", item.Category.Embedded().Description)
}

func TestCategoryRefBothShapesResolveSameID(t *testing.T) {
	t.Parallel()

	bare := CategoryByID("c1")
	embedded := CategoryEmbedded(Category{ID: "c1", Name: "Drinks"})
	require.Equal(t, bare.ID(), embedded.ID())
}

func TestCategoryRefMarshal(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(CategoryByID("c1"))
	require.NoError(t, err)
	require.JSONEq(t, `"c1"`, string(out))

	out, err = json.Marshal(CategoryEmbedded(Category{ID: "c1", Name: "Drinks"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"_id":"c1","name":"Drinks","description":""}`, string(out))

	out, err = json.Marshal(CategoryRef{})
	require.NoError(t, err)
	require.Equal(t, "null", string(out))
}

func TestOrderTransitions(t *testing.T) {
	t.Parallel()

	require.True(t, ValidOrderTransition(StatusPending, StatusAccepted))
	require.True(t, ValidOrderTransition(StatusPending, StatusRejected))
	require.True(t, ValidOrderTransition(StatusAccepted, StatusCompleted))
	require.True(t, ValidOrderTransition(StatusAccepted, StatusRejected))

	require.False(t, ValidOrderTransition(StatusPending, StatusCompleted))
	require.False(t, ValidOrderTransition(StatusAccepted, StatusPending))
	require.False(t, ValidOrderTransition(StatusCompleted, StatusPending))
	require.False(t, ValidOrderTransition(StatusRejected, StatusAccepted))
	require.False(t, ValidOrderTransition(StatusPending, StatusPending))

	require.True(t, StatusCompleted.Terminal())
	require.True(t, StatusRejected.Terminal())
	require.False(t, StatusPending.Terminal())
	require.False(t, StatusAccepted.Terminal())

	require.Equal(t, []OrderStatus{StatusAccepted, StatusRejected}, OrderTransitions(StatusPending))
	require.Equal(t, []OrderStatus{StatusCompleted, StatusRejected}, OrderTransitions(StatusAccepted))
	require.Empty(t, OrderTransitions(StatusCompleted))
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	v, err := ParsePrice("4.50")
	require.NoError(t, err)
	require.InDelta(t, 4.5, v, 1e-9)

	v, err = ParsePrice(" 0 ")
	require.NoError(t, err)
	require.Zero(t, v)

	for _, bad := range []string{"", "-5", "abc", "1.2.3"} {
		_, err := ParsePrice(bad)
		require.ErrorIs(t, err, ErrBadPrice, "input %q", bad)
	}
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	require.Equal(t, "4.5", FormatPrice(4.5))
	require.Equal(t, "12", FormatPrice(12))
	require.Equal(t, "0.99", FormatPrice(0.99))
}

func TestOrderCustomerName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "N/A", Order{}.CustomerName())
	require.Equal(t, "Ada", Order{User: Customer{Name: "Ada"}}.CustomerName())
}
