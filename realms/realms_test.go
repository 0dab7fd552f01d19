package realms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/filestore/errors"
	testutil "github.com/teranos/filestore/internal/testing"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
	"github.com/teranos/filestore/session"
)

// removalSpy records realm invalidations seen by the registry.
type removalSpy struct {
	provider.Base
	kinds   []provider.InvalidationKind
	present []bool
	stores  func() bool
}

func (s *removalSpy) ID() string { return "spy" }

func (s *removalSpy) Invalidate(_ *session.Session, kind provider.InvalidationKind, target any) error {
	s.kinds = append(s.kinds, kind)
	s.present = append(s.present, s.stores())
	return nil
}

func setup(t *testing.T, extra ...provider.Factory) (*Provider, *testutil.Env) {
	t.Helper()
	f := NewFactory()
	f.SetClock(func() time.Time { return time.UnixMilli(42) })
	env := testutil.NewEnv(t, append([]provider.Factory{f}, extra...)...)
	p, err := f.Create(env.Session)
	require.NoError(t, err)
	return p, env
}

func names(seq func(func(*model.Realm) bool)) []string {
	var out []string
	for r := range seq {
		out = append(out, r.Name)
	}
	return out
}

func TestCreateRealm(t *testing.T) {
	p, env := setup(t)

	realm, err := p.CreateRealm("r1", "acme")
	require.NoError(t, err)

	assert.Equal(t, "r1", realm.ID)
	assert.True(t, realm.Enabled)
	assert.Equal(t, int64(42), realm.CreatedTimestamp)
	assert.True(t, realm.IsUpdated())
	assert.True(t, env.Stores.Realms.Exists("r1"))
	assert.Same(t, realm, p.GetRealm("r1"))
	assert.Same(t, realm, p.GetRealmByName("acme"))
}

func TestCreateRealmGeneratesID(t *testing.T) {
	p, _ := setup(t)

	realm, err := p.CreateRealm("", "acme")
	require.NoError(t, err)
	assert.NotEmpty(t, realm.ID)
}

func TestCreateRealmConflicts(t *testing.T) {
	p, _ := setup(t)
	_, err := p.CreateRealm("r1", "acme")
	require.NoError(t, err)

	_, err = p.CreateRealm("r1", "other")
	assert.True(t, errors.IsConflictError(err), "duplicate id")

	_, err = p.CreateRealm("r2", "acme")
	assert.True(t, errors.IsConflictError(err), "duplicate name")

	_, err = p.CreateRealm("r3", "")
	assert.True(t, errors.IsInvalidArgumentError(err))
}

func TestLookupsMissing(t *testing.T) {
	p, _ := setup(t)
	assert.Nil(t, p.GetRealm("nope"))
	assert.Nil(t, p.GetRealmByName("nope"))
}

func TestStreamsOrderedByName(t *testing.T) {
	p, _ := setup(t)
	for _, name := range []string{"zeta", "Alpha", "beta", "alphabet"} {
		_, err := p.CreateRealm("", name)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Alpha", "alphabet", "beta", "zeta"}, names(p.GetRealmsStream()))
}

func TestSearchRealms(t *testing.T) {
	p, _ := setup(t)
	for _, name := range []string{"zeta", "Alpha", "beta", "alphabet"} {
		_, err := p.CreateRealm("", name)
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		search     string
		first, max int
		want       []string
	}{
		{"case insensitive", "ALPHA", 0, -1, []string{"Alpha", "alphabet"}},
		{"substring", "eta", 0, -1, []string{"beta", "zeta"}},
		{"empty search matches all", "", 0, -1, []string{"Alpha", "alphabet", "beta", "zeta"}},
		{"paged", "", 1, 2, []string{"alphabet", "beta"}},
		{"max zero", "", 0, 0, nil},
		{"no match", "omega", 0, -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(p.SearchRealms(tt.search, tt.first, tt.max)))
		})
	}
}

func TestRemoveRealmNotifies(t *testing.T) {
	var env *testutil.Env
	spy := &removalSpy{stores: func() bool { return env.Stores.Realms.Exists("r1") }}
	p, e := setup(t, spy)
	env = e

	_, err := p.CreateRealm("r1", "acme")
	require.NoError(t, err)

	removed, err := p.RemoveRealm("r1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Nil(t, p.GetRealm("r1"))

	assert.Equal(t, []provider.InvalidationKind{provider.RealmBeforeRemove, provider.RealmAfterRemove}, spy.kinds)
	assert.Equal(t, []bool{true, false}, spy.present, "before-remove sees the realm, after-remove does not")
}

func TestRemoveRealmMissing(t *testing.T) {
	p, _ := setup(t)
	removed, err := p.RemoveRealm("nope")
	require.NoError(t, err)
	assert.False(t, removed)
}
