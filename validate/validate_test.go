package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_IsValidationAndSortedMessage(t *testing.T) {
	e := Errors{}
	Required(e, "title", "  ")
	Date(e, "date", "12/01/2024", true)

	err := e.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: date: must be a date like 2006-01-02; title: is required", err.Error())

	wrapped := fmt.Errorf("add plan: %w", err)
	assert.Equal(t, map[string]string{
		"title": "is required",
		"date":  "must be a date like 2006-01-02",
	}, Fields(wrapped))
}

func TestErrors_EmptyIsNil(t *testing.T) {
	e := Errors{}
	Required(e, "title", "Picnic")
	Date(e, "targetDate", "", false)
	URL(e, "website", "")
	Range(e, "rating", 5, 1, 5)
	OneOf(e, "type", "trip", "date", "trip")

	assert.NoError(t, e.Err())
	assert.Nil(t, Fields(errors.New("other")))
}

func TestHelpers_Failures(t *testing.T) {
	e := Errors{}
	Date(e, "date", "", true)
	URL(e, "website", "ftp://example.com/x")
	URL(e, "maps", "not a url")
	Range(e, "rating", 0, 1, 5)
	OneOf(e, "type", "party", "date", "trip")

	assert.Equal(t, "is required", e["date"])
	assert.Equal(t, "must be an http(s) URL", e["website"])
	assert.Equal(t, "must be an http(s) URL", e["maps"])
	assert.Equal(t, "must be between 1 and 5", e["rating"])
	assert.Equal(t, "must be one of date, trip", e["type"])
}

func TestAdd_KeepsFirstMessage(t *testing.T) {
	e := Errors{}
	e.Add("title", "first")
	e.Add("title", "second")
	assert.Equal(t, "first", e["title"])
}
