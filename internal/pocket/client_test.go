package pocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pocketkit/internal/models"
	"pocketkit/internal/transport"
)

func newTestServer(t *testing.T, wantPath string, response string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("Expected to request '%s', got '%s'", wantPath, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body["consumer_key"] != "ck" {
			t.Errorf("Expected consumer_key 'ck', got '%v'", body["consumer_key"])
		}
		if body["access_token"] != "at" {
			t.Errorf("Expected access_token 'at', got '%v'", body["access_token"])
		}
		if inspect != nil {
			inspect(body)
		}
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("ck", "at")
	require.NoError(t, err)
	assert.Equal(t, "https://getpocket.com", client.BaseURL.String())
	assert.Equal(t, "https://getpocket.com/v3/add", client.Endpoint(PathAdd))

	_, err = NewClient("", "at")
	assert.ErrorIs(t, err, ErrMissingConsumerKey)

	_, err = NewClient("ck", "at", WithBaseURL("http://getpocket.com"))
	assert.Error(t, err, "plain http to a remote host must be rejected")

	_, err = NewClient("ck", "at", WithBaseURL("invalid-url"))
	assert.Error(t, err)
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://getpocket.com", false},
		{"http://127.0.0.1:8080", false},
		{"http://localhost:8080", false},
		{"http://[::1]:8080", false},
		{"http://getpocket.com", true},
		{"ftp://getpocket.com", true},
		{"getpocket.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := ParseBaseURL(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseBaseURL(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	server := newTestServer(t, PathAdd, `{"status":1,"item":{"item_id":"42","normal_url":"http://example.com/a"}}`, func(body map[string]any) {
		if body["url"] != "http://example.com/a" {
			t.Errorf("Expected url 'http://example.com/a', got '%v'", body["url"])
		}
		if body["tags"] != "go,news" {
			t.Errorf("Expected tags 'go,news', got '%v'", body["tags"])
		}
	})

	client, err := NewClient("ck", "at", WithBaseURL(server.URL))
	require.NoError(t, err)

	res, err := client.Add(context.Background(), models.AddRequest{URL: "http://example.com/a", Tags: []string{"go", "news"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
	assert.JSONEq(t, `{"item_id":"42","normal_url":"http://example.com/a"}`, string(res.Item))
}

func TestAddRejectsMissingURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := transport.NewMockTransport(ctrl)

	client, err := NewClient("ck", "at", WithTransport(tr))
	require.NoError(t, err)

	_, err = client.Add(context.Background(), models.AddRequest{Title: "no url"})
	assert.ErrorContains(t, err, "invalid add request")
}

func TestAddParamsAttachesCredentialsWithoutMutatingInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := transport.NewMockTransport(ctrl)

	client, err := NewClient("ck", "at", WithTransport(tr))
	require.NoError(t, err)

	params := map[string]any{"url": "https://example.com", "consumer_key": "spoofed"}
	tr.EXPECT().
		Post(gomock.Any(), "https://getpocket.com/v3/add", map[string]any{
			"url":          "https://example.com",
			"consumer_key": "ck",
			"access_token": "at",
		}).
		Return(transport.Object{"status": json.RawMessage(`1`)}, nil)

	res, err := client.AddParams(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
	assert.Equal(t, "spoofed", params["consumer_key"])
	assert.NotContains(t, params, "access_token")
}

func TestModify(t *testing.T) {
	server := newTestServer(t, PathModify, `{"status":1,"action_results":[true,false]}`, func(body map[string]any) {
		actions, ok := body["actions"].([]any)
		if !ok || len(actions) != 2 {
			t.Fatalf("Expected 2 actions, got %v", body["actions"])
		}
		first := actions[0].(map[string]any)
		if first["action"] != "archive" || first["item_id"] != "1" {
			t.Errorf("Expected archive action on item 1, got %v", first)
		}
	})

	client, err := NewClient("ck", "at", WithBaseURL(server.URL))
	require.NoError(t, err)

	res, err := client.Modify(context.Background(), models.ModifyRequest{
		Actions: []models.Action{models.ArchiveAction("1"), models.FavoriteAction("2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
	require.Len(t, res.ActionResults, 2)
	assert.Equal(t, "true", string(res.ActionResults[0]))
}

func TestModifyRejectsEmptyActions(t *testing.T) {
	client, err := NewClient("ck", "at", WithTransport(transport.NewMockTransport(gomock.NewController(t))))
	require.NoError(t, err)

	_, err = client.Modify(context.Background(), models.ModifyRequest{})
	assert.ErrorContains(t, err, "invalid modify request")
}

func TestRetrieve(t *testing.T) {
	server := newTestServer(t, PathRetrieve, `{"status":1,"list":{"42":{"item_id":"42"}}}`, func(body map[string]any) {
		if body["state"] != "unread" {
			t.Errorf("Expected state 'unread', got '%v'", body["state"])
		}
		if body["count"] != "5" {
			t.Errorf("Expected count '5', got '%v'", body["count"])
		}
	})

	client, err := NewClient("ck", "at", WithBaseURL(server.URL))
	require.NoError(t, err)

	res, err := client.Retrieve(context.Background(), models.RetrieveRequest{State: models.StateUnread, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Status)
	assert.JSONEq(t, `{"42":{"item_id":"42"}}`, string(res.List))
}

func TestRetrieveRequiresAccessToken(t *testing.T) {
	client, err := NewClient("ck", "", WithTransport(transport.NewMockTransport(gomock.NewController(t))))
	require.NoError(t, err)

	_, err = client.Retrieve(context.Background(), models.RetrieveRequest{})
	assert.ErrorIs(t, err, ErrMissingAccessToken)
}

func TestRetrievePropagatesTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr := transport.NewMockTransport(ctrl)
	apiErr := &transport.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid access token"}
	tr.EXPECT().Post(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apiErr)

	client, err := NewClient("ck", "at", WithTransport(tr))
	require.NoError(t, err)

	_, err = client.Retrieve(context.Background(), models.RetrieveRequest{})
	var got *transport.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode)
}
