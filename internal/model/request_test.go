package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateBookRequestUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("explicit nulls are recorded as cleared", func(t *testing.T) {
		var req UpdateBookRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"New","genre":null,"location": null,"publisher":"P"}`), &req))

		require.Equal(t, "New", *req.Title)
		require.Equal(t, "P", *req.Publisher)
		require.Nil(t, req.Genre)
		require.Equal(t, []string{BookFieldGenre, BookFieldLocation}, req.Cleared)
	})

	t.Run("absent fields clear nothing", func(t *testing.T) {
		var req UpdateBookRequest
		require.NoError(t, json.Unmarshal([]byte(`{"availableCopies":0}`), &req))

		require.Equal(t, 0, *req.AvailableCopies)
		require.Empty(t, req.Cleared)
	})

	t.Run("required columns ignore null", func(t *testing.T) {
		var req UpdateBookRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":null,"isbn":null}`), &req))

		require.Nil(t, req.Title)
		require.Empty(t, req.Cleared)
	})

	t.Run("type errors surface", func(t *testing.T) {
		var req UpdateBookRequest
		require.Error(t, json.Unmarshal([]byte(`{"totalCopies":"three"}`), &req))
	})
}

func TestBookChangesApplyClears(t *testing.T) {
	t.Parallel()

	genre := "Fiction"
	date := "2001-02-03"
	book := Book{Title: "T", Genre: &genre, PublishedDate: &date, Version: 3}

	updated := BookChanges{Clear: []string{BookFieldGenre}, TotalCopies: 1}.Apply(book)
	require.Nil(t, updated.Genre)
	require.Equal(t, "2001-02-03", *updated.PublishedDate)
	require.Equal(t, 4, updated.Version)
	require.Equal(t, "Fiction", *book.Genre)
}
