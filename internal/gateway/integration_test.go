package gateway_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventureops/eventadmin/internal/apperror"
	"github.com/ventureops/eventadmin/internal/gateway"
	"github.com/ventureops/eventadmin/internal/gateway/gatewaytest"
	"github.com/ventureops/eventadmin/internal/models"
)

// fixedCreds is a CredentialSource with a fixed token.
type fixedCreds struct {
	token string
}

func (c fixedCreds) Token() (string, bool) { return c.token, c.token != "" }

func seedEvents() []models.Event {
	return []models.Event{
		{ID: 1, Title: "Mainnet Launch", Votes: 10, Rank: 1, Show: 1, SortOrder: 2},
		{ID: 2, Title: "Community Airdrop", Votes: 4, Rank: 2, Show: 0, SortOrder: 1},
	}
}

func TestClientAgainstFakeGateway(t *testing.T) {
	srv := gatewaytest.New("admin", "secret", seedEvents()...)
	defer srv.Close()

	ctx := context.Background()

	// Login first; a wrong password is rejected as a fetch failure.
	anon := gateway.New(srv.URL, fixedCreds{}, nil, nil)
	_, err := anon.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, apperror.ErrFetch)

	token, err := anon.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, gatewaytest.Token, token)

	c := gateway.New(srv.URL, fixedCreds{token: token}, nil, nil)

	events, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Mainnet Launch", events[0].Title)

	require.NoError(t, c.SetShow(ctx, 2, true))
	ev, ok := srv.Event(2)
	require.True(t, ok)
	assert.Equal(t, 1, ev.Show)

	require.NoError(t, c.SetSort(ctx, 1, 5))
	ev, _ = srv.Event(1)
	assert.Equal(t, 5, ev.SortOrder)

	require.NoError(t, c.AddVotes(ctx, 1, 11))
	ev, _ = srv.Event(1)
	assert.Equal(t, 11, ev.Votes)

	detail, err := c.Info(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Community Airdrop", detail.Title)

	require.NoError(t, c.Delete(ctx, 2))
	_, ok = srv.Event(2)
	assert.False(t, ok)

	// A stale or wrong token is rejected by the gateway itself.
	stale := gateway.New(srv.URL, fixedCreds{token: "expired"}, nil, nil)
	_, err = stale.List(ctx)
	assert.ErrorIs(t, err, apperror.ErrFetch)
}

func TestClientSurfacesInjectedFailures(t *testing.T) {
	srv := gatewaytest.New("admin", "secret", seedEvents()...)
	defer srv.Close()

	c := gateway.New(srv.URL, fixedCreds{token: gatewaytest.Token}, nil, nil)
	ctx := context.Background()

	srv.FailOn("set-show")
	err := c.SetShow(ctx, 1, false)
	assert.ErrorIs(t, err, apperror.ErrFetch)

	srv.PassOn("set-show")
	assert.NoError(t, c.SetShow(ctx, 1, false))
}
