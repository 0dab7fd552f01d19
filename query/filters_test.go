package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/filestore/model"
)

func nameOf(r *model.Role) string { return r.Name }

func TestIn(t *testing.T) {
	f := In(func(e *model.Event) string { return e.Type }, "LOGIN", "LOGOUT")

	assert.True(t, f(&model.Event{Type: "LOGIN"}))
	assert.True(t, f(&model.Event{Type: "LOGOUT"}))
	assert.False(t, f(&model.Event{Type: "LOGIN_ERROR"}))

	none := In(func(e *model.Event) string { return e.Type })
	assert.False(t, none(&model.Event{Type: "LOGIN"}))
}

func TestLikeFilters(t *testing.T) {
	role := &model.Role{Name: "Manage-Users"}

	assert.True(t, Like(nameOf, "Manage%")(role))
	assert.False(t, Like(nameOf, "manage%")(role))
	assert.True(t, InsensitiveLike(nameOf, "%users")(role))
	assert.False(t, InsensitiveLike(nameOf, "%groups")(role))
}

func TestAny(t *testing.T) {
	f := Any(Equal(nameOf, "a"), nil, Equal(nameOf, "b"))

	assert.True(t, f(&model.Role{Name: "a"}))
	assert.True(t, f(&model.Role{Name: "b"}))
	assert.False(t, f(&model.Role{Name: "c"}))
	assert.False(t, Any[*model.Role]()(&model.Role{Name: "a"}))
}

func TestByString(t *testing.T) {
	c := ByString(nameOf)
	assert.Negative(t, c(&model.Role{Name: "a"}, &model.Role{Name: "b"}))
	assert.Zero(t, c(&model.Role{Name: "a"}, &model.Role{Name: "a"}))
}
