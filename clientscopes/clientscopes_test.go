package clientscopes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/filestore/errors"
	testutil "github.com/teranos/filestore/internal/testing"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/session"
)

type scopeSpy struct {
	provider.Base
	removed []string
}

func (s *scopeSpy) ID() string { return "spy" }

func (s *scopeSpy) Invalidate(_ *session.Session, kind provider.InvalidationKind, target any) error {
	if kind == provider.ClientScopeAfterRemove {
		s.removed = append(s.removed, target.(*model.ClientScope).Name)
	}
	return nil
}

func setup(t *testing.T) (*Provider, *testutil.Env, *scopeSpy) {
	t.Helper()
	f := NewFactory()
	spy := &scopeSpy{}
	env := testutil.NewEnv(t, f, spy)
	p, err := f.Create(env.Session)
	require.NoError(t, err)
	return p, env, spy
}

func scopeNames(p *Provider, realmID string) []string {
	var out []string
	for c := range p.GetClientScopesStream(realmID) {
		out = append(out, c.Name)
	}
	return out
}

func TestAddClientScope(t *testing.T) {
	p, _, _ := setup(t)

	scope, err := p.AddClientScope("R", "s1", "profile")
	require.NoError(t, err)
	assert.True(t, scope.IsUpdated())
	assert.Same(t, scope, p.GetClientScopeByID("R", "s1"))
	assert.Nil(t, p.GetClientScopeByID("S", "s1"))

	generated, err := p.AddClientScope("R", "", "email")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
}

func TestAddClientScopeConflicts(t *testing.T) {
	p, _, _ := setup(t)
	_, err := p.AddClientScope("R", "s1", "profile")
	require.NoError(t, err)

	_, err = p.AddClientScope("R", "s2", "profile")
	assert.True(t, errors.IsConflictError(err), "same name in realm")

	_, err = p.AddClientScope("S", "s1", "other")
	assert.True(t, errors.IsConflictError(err), "same id")

	_, err = p.AddClientScope("S", "s3", "profile")
	assert.NoError(t, err, "same name in another realm")

	_, err = p.AddClientScope("R", "s4", "")
	assert.True(t, errors.IsInvalidArgumentError(err))
}

func TestGetClientScopesStream(t *testing.T) {
	p, _, _ := setup(t)
	for _, name := range []string{"web-origins", "email", "roles", "profile"} {
		_, err := p.AddClientScope("R", "", name)
		require.NoError(t, err)
	}
	_, err := p.AddClientScope("S", "", "address")
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "profile", "roles", "web-origins"}, scopeNames(p, "R"))
}

func TestRemoveClientScope(t *testing.T) {
	p, env, spy := setup(t)
	_, err := p.AddClientScope("R", "s1", "profile")
	require.NoError(t, err)

	removed, err := p.RemoveClientScope("S", "s1")
	require.NoError(t, err)
	assert.False(t, removed, "wrong realm")

	removed, err = p.RemoveClientScope("R", "s1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, env.Stores.ClientScopes.Exists("s1"))
	assert.Equal(t, []string{"profile"}, spy.removed)
}

func TestRemoveClientScopes(t *testing.T) {
	p, env, spy := setup(t)
	for _, name := range []string{"b", "a"} {
		_, err := p.AddClientScope("R", "", name)
		require.NoError(t, err)
	}
	_, err := p.AddClientScope("S", "keep", "c")
	require.NoError(t, err)

	n, err := p.RemoveClientScopes("R")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, spy.removed)
	assert.Equal(t, 1, env.Stores.ClientScopes.Len())
}

func TestRealmRemovalPurgesScopes(t *testing.T) {
	p, env, _ := setup(t)
	_, err := p.AddClientScope("R", "s1", "profile")
	require.NoError(t, err)
	_, err = p.AddClientScope("S", "s2", "profile")
	require.NoError(t, err)

	require.NoError(t, env.Registry.Invalidate(env.Session, provider.RealmAfterRemove, &model.Realm{ID: "R"}))

	assert.Empty(t, scopeNames(p, "R"))
	assert.Equal(t, []string{"profile"}, scopeNames(p, "S"))
}
