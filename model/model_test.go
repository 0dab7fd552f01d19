package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettersMarkUpdatedOnlyOnChange(t *testing.T) {
	r := &Realm{ID: "r1", Name: "master"}
	assert.False(t, r.IsUpdated())

	r.SetName("master")
	assert.False(t, r.IsUpdated(), "setting the same value is not a change")

	r.SetName("main")
	assert.True(t, r.IsUpdated())
	assert.Equal(t, "main", r.Name)

	r.ClearUpdated()
	assert.False(t, r.IsUpdated())

	r.SetEventsEnabled(true)
	assert.True(t, r.IsUpdated())
}

func TestMapSetters(t *testing.T) {
	cs := &ClientScope{ID: "cs1"}

	cs.RemoveAttribute("missing")
	assert.False(t, cs.IsUpdated())

	cs.SetAttribute("display.on.consent.screen", "true")
	assert.True(t, cs.IsUpdated())
	assert.Equal(t, "true", cs.Attributes["display.on.consent.screen"])

	cs.ClearUpdated()
	cs.SetAttribute("display.on.consent.screen", "true")
	assert.False(t, cs.IsUpdated())

	cs.RemoveAttribute("display.on.consent.screen")
	assert.True(t, cs.IsUpdated())
	assert.Empty(t, cs.Attributes)
}

func TestIdentityProviderSetters(t *testing.T) {
	p := &IdentityProvider{ID: "i1", Alias: "github"}

	p.SetFirstBrokerLoginFlowID("first broker login")
	assert.True(t, p.IsUpdated())

	p.ClearUpdated()
	p.SetConfig("clientId", "abc")
	assert.True(t, p.IsUpdated())
	assert.Equal(t, map[string]string{"clientId": "abc"}, p.Config)

	p.ClearUpdated()
	p.RemoveConfig("clientId")
	assert.True(t, p.IsUpdated())
	assert.Empty(t, p.Config)
}

func TestClientScopeProtocol(t *testing.T) {
	cs := &ClientScope{ID: "cs1", Protocol: "openid-connect"}

	cs.SetProtocol("openid-connect")
	assert.False(t, cs.IsUpdated())

	cs.SetProtocol("saml")
	assert.True(t, cs.IsUpdated())
	assert.Equal(t, "saml", cs.Protocol)
}

func TestRoleComposites(t *testing.T) {
	r := &Role{ID: "admin"}
	assert.False(t, r.IsComposite())

	r.AddComposite("view")
	r.AddComposite("view")
	r.AddComposite("manage")
	assert.Equal(t, []string{"view", "manage"}, r.CompositeIDs)
	assert.True(t, r.IsUpdated())

	r.ClearUpdated()
	r.RemoveComposite("missing")
	assert.False(t, r.IsUpdated())

	r.RemoveComposite("view")
	assert.Equal(t, []string{"manage"}, r.CompositeIDs)
	assert.True(t, r.IsUpdated())
}

func TestRecordsImplementInterfaces(t *testing.T) {
	var _ Timestamped = (*Event)(nil)
	var _ Timestamped = (*AdminEvent)(nil)
	var _ Timestamped = (*Realm)(nil)
	var _ Entity = (*Role)(nil)
	var _ Entity = (*ClientScope)(nil)
	var _ Entity = (*IdentityProvider)(nil)

	for _, d := range []Dirty{&Realm{}, &Role{}, &ClientScope{}, &IdentityProvider{}, &Event{}, &AdminEvent{}} {
		d.MarkUpdated()
		assert.True(t, d.IsUpdated())
	}
}

func TestRoleKind(t *testing.T) {
	assert.False(t, (&Role{RealmID: "r"}).IsClientRole())
	assert.True(t, (&Role{RealmID: "r", ClientID: "c"}).IsClientRole())
}
