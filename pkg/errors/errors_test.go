package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/metastore-labs/metasync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "tag",
			URN:      "urn:li:tag:PII",
		}
		assert.Equal(t, "tag urn:li:tag:PII not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("domain", "urn:li:domain:finance")
		assert.Equal(t, "domain urn:li:domain:finance not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("record", "urn:li:tag:test")
		wrapped := errors.Join(errors.New("lookup failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "name",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field name: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Message: "invalid entity kind",
		}
		assert.Equal(t, "validation failed: invalid entity kind", err.Error())
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &pkgerrors.APIError{
			StatusCode: 503,
			Message:    "upstream overloaded",
			Endpoint:   "/openapi/v3/entity/tag",
		}
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "/openapi/v3/entity/tag")
		assert.True(t, errors.Is(err, pkgerrors.ErrRemoteUnavailable))
		assert.True(t, pkgerrors.IsConnectivity(err))
	})

	t.Run("auth failure maps to token invalid", func(t *testing.T) {
		err := pkgerrors.NewAPIError("/api/graphql", 401, "unauthorized")
		assert.True(t, errors.Is(err, pkgerrors.ErrTokenInvalid))
		assert.True(t, pkgerrors.IsConnectivity(err))
	})

	t.Run("client error is not connectivity", func(t *testing.T) {
		err := pkgerrors.NewAPIError("/openapi/v3/entity/tag", 422, "bad aspect")
		assert.False(t, pkgerrors.IsConnectivity(err))
	})

	t.Run("with wrapped error", func(t *testing.T) {
		baseErr := errors.New("connection refused")
		err := &pkgerrors.APIError{
			Message:  "request failed",
			Endpoint: "/api/graphql",
			Err:      baseErr,
		}
		assert.Equal(t, baseErr, err.Unwrap())
		assert.True(t, errors.Is(err, pkgerrors.ErrRemoteUnavailable))
	})
}

func TestSyncError(t *testing.T) {
	base := errors.New("boom")
	err := &pkgerrors.SyncError{
		Operation: "push",
		URNs:      []string{"urn:li:tag:a", "urn:li:tag:b"},
		Err:       base,
	}
	assert.Contains(t, err.Error(), "push")
	assert.Contains(t, err.Error(), "urn:li:tag:a")
	assert.Equal(t, base, errors.Unwrap(err))
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapIO("read", "file.json", nil))
		assert.Nil(t, pkgerrors.WrapParse("yaml", "recipe.yaml", nil))
		assert.Nil(t, pkgerrors.WrapStore("baseline", "get", "urn:li:tag:x", nil))
	})

	t.Run("wrap io", func(t *testing.T) {
		base := errors.New("permission denied")
		err := pkgerrors.WrapIO("write", "/tmp/out.json", base)
		assert.Contains(t, err.Error(), "write")
		assert.Contains(t, err.Error(), "/tmp/out.json")
		assert.Equal(t, base, errors.Unwrap(err))
	})

	t.Run("wrap store", func(t *testing.T) {
		base := errors.New("db closed")
		err := pkgerrors.WrapStore("records", "list", "", base)
		assert.Contains(t, err.Error(), "records")
		assert.Equal(t, base, errors.Unwrap(err))
	})
}
