package tmdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/punchamoorthee/favoritemovies/internal/domain"
)

// Each Decode function validates the schema of one endpoint's response and
// returns a typed value or an error matching domain.ErrDecode.

func DecodeRequestToken(body []byte) (string, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return "", err
	}
	return stringField(obj, "request_token")
}

// DecodeValidateLogin returns the value of the success flag. Whether false
// is acceptable is decided by the caller.
func DecodeValidateLogin(body []byte) (bool, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return false, err
	}
	return boolField(obj, "success")
}

func DecodeSession(body []byte) (string, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return "", err
	}
	return stringField(obj, "session_id")
}

// DecodeAccount returns the account id, which must be positive.
func DecodeAccount(body []byte) (int64, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return 0, err
	}
	id, err := intField(obj, "id")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: field id is not a positive account id", domain.ErrDecode)
	}
	return id, nil
}

// DecodeFavoriteMovies decodes one page of the favorite movies list.
// Every record must carry an integer id.
func DecodeFavoriteMovies(body []byte) ([]domain.Movie, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	raw, ok := obj["results"]
	if !ok {
		return nil, fmt.Errorf("%w: missing field results", domain.ErrDecode)
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, fmt.Errorf("%w: field results is not an array of objects", domain.ErrDecode)
	}

	movies := make([]domain.Movie, 0, len(records))
	for i, rec := range records {
		id, err := intField(rec, "id")
		if err != nil {
			return nil, fmt.Errorf("results[%d]: %w", i, err)
		}
		m := domain.Movie{ID: id}
		if title, err := stringField(rec, "title"); err == nil {
			m.Title = title
		}
		if poster, err := stringField(rec, "poster_path"); err == nil {
			m.PosterPath = poster
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// DecodeStatus returns the movie API status_code of a mutation response.
func DecodeStatus(body []byte) (int, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return 0, err
	}
	code, err := parseInt(obj, "status_code", strconv.IntSize)
	if err != nil {
		return 0, err
	}
	return int(code), nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: response is not a JSON object", domain.ErrDecode)
	}
	return obj, nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %s", domain.ErrDecode, key)
	}
	var s string
	if bytes.HasPrefix(raw, []byte(`"`)) && json.Unmarshal(raw, &s) == nil && s != "" {
		return s, nil
	}
	return "", fmt.Errorf("%w: field %s is not a non-empty string", domain.ErrDecode, key)
}

func boolField(obj map[string]json.RawMessage, key string) (bool, error) {
	raw, ok := obj[key]
	if !ok {
		return false, fmt.Errorf("%w: missing field %s", domain.ErrDecode, key)
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: field %s is not a boolean", domain.ErrDecode, key)
}

func intField(obj map[string]json.RawMessage, key string) (int64, error) {
	return parseInt(obj, key, 64)
}

// parseInt rejects values that do not fit in bitSize bits.
func parseInt(obj map[string]json.RawMessage, key string, bitSize int) (int64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %s", domain.ErrDecode, key)
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s is not an integer", domain.ErrDecode, key)
	}
	return n, nil
}
