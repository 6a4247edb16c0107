package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventureops/eventadmin/internal/apperror"
	"github.com/ventureops/eventadmin/internal/events"
	"github.com/ventureops/eventadmin/internal/gateway"
	"github.com/ventureops/eventadmin/internal/gateway/gatewaytest"
	"github.com/ventureops/eventadmin/internal/guard"
	"github.com/ventureops/eventadmin/internal/models"
	"github.com/ventureops/eventadmin/internal/session"
)

// TestFullFlowAgainstFakeGateway wires the real session store, gateway
// client and controller against the in-process fake gateway.
func TestFullFlowAgainstFakeGateway(t *testing.T) {
	srv := gatewaytest.New("admin", "secret",
		models.Event{ID: 1, Title: "Mainnet Launch", Votes: 10, Show: 1, SortOrder: 2},
		models.Event{ID: 2, Title: "Community Airdrop", Votes: 4, Show: 0, SortOrder: 1},
	)
	defer srv.Close()

	ctx := context.Background()
	store, err := session.Open(t.TempDir())
	require.NoError(t, err)
	client := gateway.New(srv.URL, store, nil, nil)
	ctrl := events.New(client, nil)
	g := guard.New(store)

	// Logged out: the guard redirects and the gateway fails closed.
	assert.Equal(t, guard.ViewLogin, g.Resolve(guard.ViewDashboard))
	_, err = ctrl.Load(ctx)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)

	ok, err := store.Login(ctx, client, "admin", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, guard.ViewDashboard, g.Resolve(guard.ViewDashboard))

	list, err := ctrl.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Toggle propagates to the server.
	require.NoError(t, ctrl.ToggleVisibility(ctx, 2))
	ev, _ := srv.Event(2)
	assert.Equal(t, 1, ev.Show)

	// A failing toggle rolls the optimistic flip back.
	srv.FailOn("set-show")
	err = ctrl.ToggleVisibility(ctx, 1)
	assert.ErrorIs(t, err, apperror.ErrFetch)
	rec, _ := ctrl.Get(1)
	assert.True(t, rec.Visible())
	ev, _ = srv.Event(1)
	assert.Equal(t, 1, ev.Show)
	srv.PassOn("set-show")

	// Vote totals change server-side only until the next reload.
	require.NoError(t, ctrl.AddVotes(ctx, 1, 5))
	rec, _ = ctrl.Get(1)
	assert.Equal(t, 10, rec.Votes)
	_, err = ctrl.Load(ctx)
	require.NoError(t, err)
	rec, _ = ctrl.Get(1)
	assert.Equal(t, 15, rec.Votes)

	require.NoError(t, ctrl.Remove(ctx, 2))
	assert.Equal(t, 1, ctrl.Len())
	_, present := srv.Event(2)
	assert.False(t, present)

	// Logout guards the views again without touching the server.
	store.Logout()
	assert.Equal(t, guard.ViewLogin, g.Resolve(guard.ViewDashboard))
}
