package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatchKeepsFirstSetOrderAndLastValue(t *testing.T) {
	var p Patch
	assert.True(t, p.Empty())

	p.Set("bio", "a")
	p.Set("location", "Leeds")
	p.Set("bio", "b")

	assert.Equal(t, []Field{{"bio", "b"}, {"location", "Leeds"}}, p.Fields())
	assert.True(t, p.Has("location"))
	assert.False(t, p.Has("first_name"))

	q := p.Without("bio")
	assert.Equal(t, []Field{{"location", "Leeds"}}, q.Fields())
	assert.Len(t, p.Fields(), 2)
}

func TestApplyOptions(t *testing.T) {
	o := Apply(nil)
	assert.False(t, o.IncludeInactive)

	o = Apply([]Option{IncludeInactive(), ForUpdate()})
	assert.True(t, o.IncludeInactive)
	assert.True(t, o.ForUpdate)
}
