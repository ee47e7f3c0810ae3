package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsNestedErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("during ingest: %w", StoreWrite(cause))

	assert.Equal(t, KindStoreWrite, KindOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIsClientFault(t *testing.T) {
	assert.True(t, IsClientFault(EmptyQuery("query must not be empty")))
	assert.True(t, IsClientFault(EmptyContent("no extractable text")))
	assert.True(t, IsClientFault(DocumentFormat("bad pdf", errors.New("parse"))))

	assert.False(t, IsClientFault(EmbeddingProvider(errors.New("timeout"))))
	assert.False(t, IsClientFault(StoreRead(errors.New("refused"))))
	assert.False(t, IsClientFault(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(EmptyQuery("empty")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(GenerationProvider(errors.New("rate limit"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindStoreWrite, "vector store write failed", cause)

	assert.Contains(t, err.Error(), "vector store write failed")
	assert.Contains(t, err.Error(), "boom")
	require.ErrorIs(t, err, cause)

	bare := New(KindEmptyQuery, "query must not be empty")
	assert.Equal(t, "query must not be empty", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}
