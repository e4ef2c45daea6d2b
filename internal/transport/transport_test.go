package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json; charset=UTF-8" {
			t.Errorf("Expected JSON content type, got '%s'", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Accept") != "application/json" {
			t.Errorf("Expected X-Accept 'application/json', got '%s'", r.Header.Get("X-Accept"))
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["consumer_key"] != "ck" {
			t.Errorf("Expected consumer_key 'ck', got '%s'", body["consumer_key"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":1,"code":"abc"}`))
	}))
	defer server.Close()

	tr := NewHTTPTransport(0, nil)
	obj, err := tr.Post(context.Background(), server.URL+"/v3/oauth/request", map[string]string{"consumer_key": "ck"})
	require.NoError(t, err)
	assert.Equal(t, "abc", obj.String("code"))
	assert.Equal(t, "1", obj.String("status"))
	assert.Equal(t, "", obj.String("missing"))
}

func TestPostNonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	obj, err := NewHTTPTransport(0, nil).Post(context.Background(), server.URL, struct{}{})
	assert.Nil(t, obj)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
	assert.Equal(t, "<html>not json</html>", string(parseErr.Body))
}

func TestPostNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer server.Close()

	obj, err := NewHTTPTransport(0, nil).Post(context.Background(), server.URL, struct{}{})
	assert.Nil(t, obj)

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
}

func TestPostAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Error", "User rejected code.")
		w.Header().Set("X-Error-Code", "158")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	obj, err := NewHTTPTransport(0, nil).Post(context.Background(), server.URL, struct{}{})
	assert.Nil(t, obj)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 158, apiErr.Code)
	assert.Equal(t, "User rejected code.", apiErr.Message)
	assert.Equal(t, "API error: User rejected code. (status: 403, code: 158)", apiErr.Error())
}

func TestPostNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	obj, err := NewHTTPTransport(0, nil).Post(context.Background(), endpoint, struct{}{})
	assert.Nil(t, obj)
	require.Error(t, err)

	var apiErr *APIError
	var parseErr *ParseError
	assert.False(t, errors.As(err, &apiErr))
	assert.False(t, errors.As(err, &parseErr))
}

func TestPostUnmarshalablePayload(t *testing.T) {
	obj, err := NewHTTPTransport(0, nil).Post(context.Background(), "https://example.com", map[string]any{"bad": make(chan int)})
	assert.Nil(t, obj)
	assert.ErrorContains(t, err, "failed to marshal request body")
}

func TestObjectDecode(t *testing.T) {
	obj := Object{
		"status": json.RawMessage(`1`),
		"item":   json.RawMessage(`{"item_id":"42"}`),
	}

	var status int
	require.NoError(t, obj.Decode("status", &status))
	assert.Equal(t, 1, status)

	var item map[string]string
	require.NoError(t, obj.Decode("item", &item))
	assert.Equal(t, "42", item["item_id"])

	var missing int
	require.NoError(t, obj.Decode("missing", &missing))
	assert.Equal(t, 0, missing)

	var wrong string
	assert.Error(t, obj.Decode("item", &wrong))
}
