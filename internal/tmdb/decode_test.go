package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

func TestDecodeRequestToken(t *testing.T) {
	token, err := DecodeRequestToken([]byte(`{"success":true,"request_token":"T1"}`))
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	for _, body := range []string{
		`{}`,
		`{"request_token":42}`,
		`{"request_token":""}`,
		`{"request_token":null}`,
		`not json`,
		`["T1"]`,
		`null`,
	} {
		_, err := DecodeRequestToken([]byte(body))
		assert.ErrorIs(t, err, domain.ErrDecode, body)
	}
}

func TestDecodeValidateLogin(t *testing.T) {
	ok, err := DecodeValidateLogin([]byte(`{"success":true}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = DecodeValidateLogin([]byte(`{"success":false,"status_code":30}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = DecodeValidateLogin([]byte(`{"success":"true"}`))
	assert.ErrorIs(t, err, domain.ErrDecode)

	_, err = DecodeValidateLogin([]byte(`{"status_code":30}`))
	assert.ErrorIs(t, err, domain.ErrDecode)
}

func TestDecodeAccount(t *testing.T) {
	id, err := DecodeAccount([]byte(`{"id":42,"username":"jdoe"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, body := range []string{`{"id":"42"}`, `{"id":4.2}`, `{"username":"jdoe"}`, `{"id":0}`, `{"id":-7}`} {
		_, err := DecodeAccount([]byte(body))
		assert.ErrorIs(t, err, domain.ErrDecode, body)
	}
}

func TestDecodeFavoriteMovies(t *testing.T) {
	movies, err := DecodeFavoriteMovies([]byte(`{
		"page": 1,
		"results": [
			{"id": 550, "title": "Fight Club", "poster_path": "/a.jpg"},
			{"id": 13, "title": "Forrest Gump", "poster_path": null}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, domain.Movie{ID: 550, Title: "Fight Club", PosterPath: "/a.jpg"}, movies[0])
	assert.Equal(t, domain.Movie{ID: 13, Title: "Forrest Gump"}, movies[1])

	movies, err = DecodeFavoriteMovies([]byte(`{"results":[]}`))
	require.NoError(t, err)
	assert.Empty(t, movies)

	for _, body := range []string{
		`{"page":1}`,
		`{"results":null}`,
		`{"results":{"id":1}}`,
		`{"results":[{"title":"no id"}]}`,
	} {
		_, err := DecodeFavoriteMovies([]byte(body))
		assert.ErrorIs(t, err, domain.ErrDecode, body)
	}
}

func TestDecodeStatus(t *testing.T) {
	code, err := DecodeStatus([]byte(`{"status_code":12,"status_message":"The item/record was updated successfully."}`))
	require.NoError(t, err)
	assert.Equal(t, 12, code)

	for _, body := range []string{`{"status_message":"?"}`, `{"status_code":9223372036854775808}`} {
		_, err = DecodeStatus([]byte(body))
		assert.ErrorIs(t, err, domain.ErrDecode, body)
	}
}
