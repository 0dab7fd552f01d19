package events

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/filestore/errors"
	testutil "github.com/teranos/filestore/internal/testing"
	"github.com/teranos/filestore/model"
	"github.com/teranos/filestore/provider"
)

func setup(t *testing.T) (*Provider, *testutil.Env, *Factory) {
	t.Helper()
	f := NewFactory()
	f.SetClock(func() time.Time { return time.UnixMilli(5_000) })
	env := testutil.NewEnv(t, f)
	p, err := f.Create(env.Session)
	require.NoError(t, err)
	return p, env, f
}

func eventIDs(t *testing.T, q *Query) []string {
	t.Helper()
	seq, err := q.GetResultStream()
	require.NoError(t, err)
	var ids []string
	for e := range seq {
		ids = append(ids, e.ID)
	}
	return ids
}

func adminIDs(t *testing.T, q *AdminQuery) []string {
	t.Helper()
	seq, err := q.GetResultStream()
	require.NoError(t, err)
	var ids []string
	for e := range seq {
		ids = append(ids, e.ID)
	}
	return ids
}

func seedEvents(t *testing.T, p *Provider) {
	t.Helper()
	for _, e := range []*model.Event{
		{ID: "e1", Time: 100, Type: "LOGIN", RealmID: "R", ClientID: "web", UserID: "alice", IPAddress: "10.0.0.1"},
		{ID: "e2", Time: 200, Type: "LOGIN_ERROR", RealmID: "R", ClientID: "web", UserID: "bob", IPAddress: "10.0.0.2"},
		{ID: "e3", Time: 300, Type: "LOGOUT", RealmID: "R", ClientID: "cli", UserID: "alice", IPAddress: "10.0.0.1"},
		{ID: "e4", Time: 250, Type: "LOGIN", RealmID: "other", ClientID: "web", UserID: "carol"},
	} {
		require.NoError(t, p.OnEvent(e))
	}
}

func TestQueryPagination(t *testing.T) {
	p, _, _ := setup(t)
	seedEvents(t, p)

	got := eventIDs(t, p.CreateQuery().Realm("R").OrderByAscTime().FirstResult(1).MaxResults(1))
	assert.Equal(t, []string{"e2"}, got)
}

func TestQueryDefaultNewestFirst(t *testing.T) {
	p, _, _ := setup(t)
	seedEvents(t, p)

	assert.Equal(t, []string{"e3", "e4", "e2", "e1"}, eventIDs(t, p.CreateQuery()))
	assert.Equal(t, []string{"e1", "e2", "e4", "e3"}, eventIDs(t, p.CreateQuery().OrderByAscTime()))
	assert.Equal(t, []string{"e3", "e4", "e2", "e1"}, eventIDs(t, p.CreateQuery().OrderByAscTime().OrderByDescTime()))
}

func TestQueryFilters(t *testing.T) {
	p, _, _ := setup(t)
	seedEvents(t, p)

	tests := []struct {
		name  string
		build func(*Query) *Query
		want  []string
	}{
		{"type", func(q *Query) *Query { return q.Type("LOGIN") }, []string{"e4", "e1"}},
		{"several types", func(q *Query) *Query { return q.Type("LOGIN_ERROR", "LOGOUT") }, []string{"e3", "e2"}},
		{"no types", func(q *Query) *Query { return q.Type() }, []string{"e3", "e4", "e2", "e1"}},
		{"client", func(q *Query) *Query { return q.Client("cli") }, []string{"e3"}},
		{"user", func(q *Query) *Query { return q.User("alice") }, []string{"e3", "e1"}},
		{"ip", func(q *Query) *Query { return q.IPAddress("10.0.0.2") }, []string{"e2"}},
		{"conjunction", func(q *Query) *Query { return q.Realm("R").User("alice").Type("LOGIN") }, []string{"e1"}},
		{"from inclusive", func(q *Query) *Query { return q.FromDate(250) }, []string{"e3", "e4"}},
		{"to inclusive", func(q *Query) *Query { return q.ToDate(200) }, []string{"e2", "e1"}},
		{"window", func(q *Query) *Query { return q.FromDate(200).ToDate(250) }, []string{"e4", "e2"}},
		{"later bound wins", func(q *Query) *Query { return q.FromDate(0).FromDate(300) }, []string{"e3"}},
		{"no match", func(q *Query) *Query { return q.Realm("nowhere") }, nil},
		{"max zero", func(q *Query) *Query { return q.MaxResults(0) }, nil},
		{"first beyond end", func(q *Query) *Query { return q.FirstResult(10) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventIDs(t, tt.build(p.CreateQuery())))
		})
	}
}

func TestQueryReevaluates(t *testing.T) {
	p, _, _ := setup(t)
	seedEvents(t, p)

	q := p.CreateQuery().Realm("R")
	first := eventIDs(t, q)
	require.NoError(t, p.OnEvent(&model.Event{ID: "e5", Time: 400, RealmID: "R"}))
	second := eventIDs(t, q)

	assert.Len(t, first, 3)
	assert.Equal(t, "e5", second[0])
	assert.Len(t, second, 4)
}

func TestOnEventDefaults(t *testing.T) {
	p, env, _ := setup(t)
	testutil.Seed(t, env.Stores.Realms, &model.Realm{ID: "R", EventsExpiration: 60})

	e := &model.Event{RealmID: "R", Type: "LOGIN"}
	require.NoError(t, p.OnEvent(e))

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(5_000), e.Time)
	assert.Equal(t, int64(65_000), e.ExpirationTime)
	assert.True(t, e.IsUpdated(), "new events are written back")
	assert.True(t, env.Stores.Events.Exists(e.ID))

	assert.True(t, errors.IsInvalidArgumentError(p.OnEvent(nil)))
}

func TestClearOperations(t *testing.T) {
	p, env, _ := setup(t)
	seedEvents(t, p)

	assert.Equal(t, 1, p.ClearOlderThan("R", 200))
	assert.False(t, env.Stores.Events.Exists("e1"))

	assert.Equal(t, 2, p.Clear("R"))
	assert.Equal(t, []string{"e4"}, eventIDs(t, p.CreateQuery()))
}

func TestClearExpired(t *testing.T) {
	p, _, _ := setup(t)
	require.NoError(t, p.OnEvent(&model.Event{ID: "old", Time: 1, ExpirationTime: 1_000}))
	require.NoError(t, p.OnEvent(&model.Event{ID: "due", Time: 2, ExpirationTime: 2_000}))
	require.NoError(t, p.OnEvent(&model.Event{ID: "later", Time: 3, ExpirationTime: 9_000}))
	require.NoError(t, p.OnEvent(&model.Event{ID: "forever", Time: 4}))

	assert.Equal(t, 2, p.ClearExpired(2_000))
	got := eventIDs(t, p.CreateQuery())
	slices.Sort(got)
	assert.Equal(t, []string{"forever", "later"}, got)
}

func seedAdminEvents(t *testing.T, p *Provider) {
	t.Helper()
	for _, e := range []*model.AdminEvent{
		{ID: "a1", Time: 10, RealmID: "R", OperationType: "CREATE", ResourceType: "USER",
			ResourcePath: "users/123", Representation: `{"username":"x"}`,
			AuthDetails: model.AuthDetails{RealmID: "master", ClientID: "admin-cli", UserID: "root", IPAddress: "127.0.0.1"}},
		{ID: "a2", Time: 20, RealmID: "R", OperationType: "UPDATE", ResourceType: "CLIENT",
			ResourcePath: "clients/web",
			AuthDetails:  model.AuthDetails{RealmID: "R", ClientID: "console", UserID: "ops", IPAddress: "10.1.1.1"}},
		{ID: "a3", Time: 30, RealmID: "R", OperationType: "DELETE", ResourceType: "USER",
			ResourcePath: "users/456/role-mappings",
			AuthDetails:  model.AuthDetails{RealmID: "master", ClientID: "admin-cli", UserID: "root", IPAddress: "127.0.0.1"}},
		{ID: "a4", Time: 40, RealmID: "S", OperationType: "CREATE", ResourceType: "USER",
			ResourcePath: "users/789"},
	} {
		require.NoError(t, p.OnAdminEvent(e, true))
	}
}

func TestAdminQueryFilters(t *testing.T) {
	p, _, _ := setup(t)
	seedAdminEvents(t, p)

	tests := []struct {
		name  string
		build func(*AdminQuery) *AdminQuery
		want  []string
	}{
		{"all newest first", func(q *AdminQuery) *AdminQuery { return q }, []string{"a4", "a3", "a2", "a1"}},
		{"realm", func(q *AdminQuery) *AdminQuery { return q.Realm("R").OrderByAscTime() }, []string{"a1", "a2", "a3"}},
		{"operation", func(q *AdminQuery) *AdminQuery { return q.Operation("CREATE", "DELETE") }, []string{"a4", "a3", "a1"}},
		{"resource type", func(q *AdminQuery) *AdminQuery { return q.ResourceType("CLIENT") }, []string{"a2"}},
		{"auth realm", func(q *AdminQuery) *AdminQuery { return q.AuthRealm("master") }, []string{"a3", "a1"}},
		{"auth client", func(q *AdminQuery) *AdminQuery { return q.AuthClient("console") }, []string{"a2"}},
		{"auth user", func(q *AdminQuery) *AdminQuery { return q.AuthUser("root") }, []string{"a3", "a1"}},
		{"auth ip", func(q *AdminQuery) *AdminQuery { return q.AuthIPAddress("10.1.1.1") }, []string{"a2"}},
		{"path wildcard", func(q *AdminQuery) *AdminQuery { return q.ResourcePath("users/*") }, []string{"a4", "a3", "a1"}},
		{"path inner wildcard", func(q *AdminQuery) *AdminQuery { return q.ResourcePath("users/*/role-mappings") }, []string{"a3"}},
		{"path exact", func(q *AdminQuery) *AdminQuery { return q.ResourcePath("clients/web") }, []string{"a2"}},
		{"time window", func(q *AdminQuery) *AdminQuery { return q.FromTime(20).ToTime(30) }, []string{"a3", "a2"}},
		{"page", func(q *AdminQuery) *AdminQuery { return q.FirstResult(1).MaxResults(2) }, []string{"a3", "a2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adminIDs(t, tt.build(p.CreateAdminQuery())))
		})
	}
}

func TestOnAdminEventRepresentation(t *testing.T) {
	p, env, _ := setup(t)

	with := &model.AdminEvent{ID: "with", Representation: "{}"}
	without := &model.AdminEvent{ID: "without", Representation: "{}"}
	require.NoError(t, p.OnAdminEvent(with, true))
	require.NoError(t, p.OnAdminEvent(without, false))

	got, _ := env.Stores.AdminEvents.Get("with")
	assert.Equal(t, "{}", got.Representation)
	got, _ = env.Stores.AdminEvents.Get("without")
	assert.Empty(t, got.Representation)
	assert.Equal(t, int64(5_000), got.Time)
}

func TestClearAdmin(t *testing.T) {
	p, env, _ := setup(t)
	seedAdminEvents(t, p)

	assert.Equal(t, 1, p.ClearAdminOlderThan("R", 20))
	assert.Equal(t, 2, p.ClearAdmin("R"))
	assert.Equal(t, 1, env.Stores.AdminEvents.Len())
}

func TestRealmRemovalPurgesEvents(t *testing.T) {
	p, env, _ := setup(t)
	seedEvents(t, p)
	seedAdminEvents(t, p)

	realm := &model.Realm{ID: "R"}
	require.NoError(t, env.Registry.Invalidate(env.Session, provider.RealmBeforeRemove, realm))
	assert.Equal(t, 4, env.Stores.Events.Len(), "only after-remove purges")

	require.NoError(t, env.Registry.Invalidate(env.Session, provider.RealmAfterRemove, realm))
	assert.Equal(t, []string{"e4"}, eventIDs(t, p.CreateQuery()))
	assert.Equal(t, []string{"a4"}, adminIDs(t, p.CreateAdminQuery()))
}

func TestCreateReusesSessionProvider(t *testing.T) {
	p, env, f := setup(t)

	again, err := f.Create(env.Session)
	require.NoError(t, err)
	assert.Same(t, p, again)
}
