package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventureops/eventadmin/internal/apperror"
)

// roundTripperFunc adapts a function into an http.RoundTripper.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestHTTPClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn, Timeout: time.Second}
}

// staticCreds is a CredentialSource with a fixed token.
type staticCreds struct {
	token string
}

func (c staticCreds) Token() (string, bool) { return c.token, c.token != "" }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestLogin_SendsCredentialsWithoutToken(t *testing.T) {
	var seen *http.Request
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		seen = req
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "admin", body.Username)
		assert.Equal(t, "secret", body.Password)
		return jsonResponse(http.StatusOK, `{"data":{"token":"fresh"}}`), nil
	})
	c := New("http://gw.example.com/v1/event/admin", staticCreds{}, newTestHTTPClient(transport), nil)

	token, err := c.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	require.NotNil(t, seen)
	assert.Equal(t, "http://gw.example.com/v1/event/admin/login", seen.URL.String())
	assert.Empty(t, seen.Header.Get("Authorization"), "login must not require a stored credential")
	assert.NotEmpty(t, seen.Header.Get("X-Request-Id"))
}

func TestAuthenticatedCall_FailsClosedWithoutCredential(t *testing.T) {
	dispatched := 0
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		dispatched++
		return jsonResponse(http.StatusOK, `{"data":{"events":[]}}`), nil
	})
	c := New("http://gw.example.com", staticCreds{}, newTestHTTPClient(transport), nil)

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, apperror.ErrAuthentication)
	assert.Equal(t, 0, dispatched, "no request may leave the client without a credential")
}

func TestList_AttachesStoredCredential(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "tok-1", req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{"data":{"events":[{"id":1,"event_title":"Mainnet Launch"}]}}`), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok-1"}, newTestHTTPClient(transport), nil)

	events, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, "Mainnet Launch", events[0].Title)
}

func TestList_NetworkError(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, apperror.ErrFetch)
}

func TestList_ServerError(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, "internal error\n"), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, apperror.ErrFetch)
	assert.Contains(t, err.Error(), "server error: internal error")
}

func TestList_InvalidJSON(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, apperror.ErrFetch)
	assert.Contains(t, err.Error(), "invalid response")
}

func TestSetShow_WireFormat(t *testing.T) {
	var body map[string]int64
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/set-show", req.URL.Path)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		return jsonResponse(http.StatusOK, `{"data":null}`), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	require.NoError(t, c.SetShow(context.Background(), 5, true))
	assert.Equal(t, map[string]int64{"event_id": 5, "is_show": 1}, body)

	require.NoError(t, c.SetShow(context.Background(), 5, false))
	assert.Equal(t, map[string]int64{"event_id": 5, "is_show": 0}, body)
}

func TestSetSortAndDelete_WireFormat(t *testing.T) {
	bodies := map[string]map[string]int64{}
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		var body map[string]int64
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		bodies[req.URL.Path] = body
		return jsonResponse(http.StatusOK, `{"data":null}`), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	require.NoError(t, c.SetSort(context.Background(), 9, 3))
	require.NoError(t, c.Delete(context.Background(), 4))

	assert.Equal(t, map[string]int64{"event_id": 9, "sort": 3}, bodies["/set-sort"])
	assert.Equal(t, map[string]int64{"event_id": 4}, bodies["/delete"])
}

func TestInfo_QueryAndDecode(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/info", req.URL.Path)
		assert.Equal(t, "7", req.URL.Query().Get("event_id"))
		return jsonResponse(http.StatusOK, `{"data":{"id":7,"event_title":"Airdrop","votes":12,"is_show":1}}`), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	ev, err := c.Info(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ev.ID)
	assert.Equal(t, "Airdrop", ev.Title)
	assert.Equal(t, 12, ev.Votes)
	assert.True(t, ev.Visible())
}

func TestAddVotes_SendsAbsoluteTotal(t *testing.T) {
	var body map[string]int64
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/add-votes", req.URL.Path)
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		return jsonResponse(http.StatusOK, `{"data":null}`), nil
	})
	c := New("http://gw.example.com", staticCreds{token: "tok"}, newTestHTTPClient(transport), nil)

	require.NoError(t, c.AddVotes(context.Background(), 2, 15))
	assert.Equal(t, map[string]int64{"event_id": 2, "votes": 15}, body)
}
