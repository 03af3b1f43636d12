package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lereldarion/rett/element"
)

func TestStore_UseAtom(t *testing.T) {
	s := NewStore()

	i, err := s.UseAtom(element.Text("hello"))
	require.NoError(t, err)
	assert.Equal(t, element.Index(0), i)

	// Same value is deduplicated.
	j, err := s.UseAtom(element.Text("hello"))
	require.NoError(t, err)
	assert.Equal(t, i, j)
	assert.Equal(t, 1, s.Len())

	// Different value gets a fresh slot.
	k, err := s.UseAtom(element.Text("world"))
	require.NoError(t, err)
	assert.Equal(t, element.Index(1), k)

	// Text and integer atoms never collide, even when they print alike.
	a, err := s.UseAtom(element.Text("42"))
	require.NoError(t, err)
	b, err := s.UseAtom(element.Int(42))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 4, s.Len())
}

func TestStore_UseAtom_Invalid(t *testing.T) {
	s := NewStore()

	_, err := s.UseAtom(element.Atom{})
	assert.ErrorIs(t, err, ErrInvalidAtom)
	assert.Equal(t, 0, s.Len())
}

func TestStore_UseLink(t *testing.T) {
	s := NewStore()

	from, err := s.UseAtom(element.Text("likes"))
	require.NoError(t, err)
	to := s.CreateEntity()

	l, err := s.UseLink(element.Link{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, element.Index(2), l)

	// Same ordered pair is deduplicated.
	l2, err := s.UseLink(element.Link{From: from, To: to})
	require.NoError(t, err)
	assert.Equal(t, l, l2)
	assert.Equal(t, 3, s.Len())

	// The reversed pair is a different link.
	rev, err := s.UseLink(element.Link{From: to, To: from})
	require.NoError(t, err)
	assert.NotEqual(t, l, rev)
	assert.Equal(t, 4, s.Len())
}

func TestStore_UseLink_InvalidEndpoint(t *testing.T) {
	s := NewStore()
	a, err := s.UseAtom(element.Int(1))
	require.NoError(t, err)

	for _, l := range []element.Link{
		{From: a, To: 7},
		{From: 7, To: a},
		{From: 7, To: 9},
	} {
		_, err := s.UseLink(l)
		assert.ErrorIs(t, err, ErrInvalidIndex)

		var ei *ErrIndexInvalid
		require.ErrorAs(t, err, &ei)
		assert.Equal(t, element.Index(7), ei.Index)
	}

	// A failed insert leaves the store unchanged.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Cap())
	_, ok := s.LinkIndex(element.Link{From: a, To: 7})
	assert.False(t, ok)
}

func TestStore_UseLink_LinkEndpoints(t *testing.T) {
	s := NewStore()

	a, err := s.UseAtom(element.Text("subject"))
	require.NoError(t, err)
	b := s.CreateEntity()

	base, err := s.UseLink(element.Link{From: a, To: b})
	require.NoError(t, err)

	// Links are ordinary elements, so a link may be an endpoint itself.
	c, err := s.UseAtom(element.Text("confidence"))
	require.NoError(t, err)
	meta, err := s.UseLink(element.Link{From: c, To: base})
	require.NoError(t, err)

	ref, err := s.Get(meta)
	require.NoError(t, err)
	toRef, ok := ref.To()
	require.True(t, ok)
	assert.Equal(t, element.KindLink, toRef.Kind())
	assert.Equal(t, base, toRef.Index())

	baseRef, err := s.Get(base)
	require.NoError(t, err)
	assert.Equal(t, 1, baseRef.InDegree())
}

func TestStore_CreateEntity(t *testing.T) {
	s := NewStore()

	// Entities have no value: every call mints a distinct element.
	a := s.CreateEntity()
	b := s.CreateEntity()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())

	ref, err := s.Get(a)
	require.NoError(t, err)
	assert.Equal(t, element.KindEntity, ref.Kind())
}

func TestStore_SetDescription(t *testing.T) {
	s := NewStore()
	i, err := s.UseAtom(element.Text("x"))
	require.NoError(t, err)

	require.NoError(t, s.SetDescription(i, "placeholder variable"))
	ref, err := s.Get(i)
	require.NoError(t, err)
	assert.Equal(t, "placeholder variable", ref.Description())

	// Descriptions do not participate in deduplication.
	j, err := s.UseAtom(element.Text("x"))
	require.NoError(t, err)
	assert.Equal(t, i, j)

	err = s.SetDescription(99, "nope")
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()

	a, err := s.UseAtom(element.Text("gone"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(a))
	assert.False(t, s.Contains(a))
	assert.Equal(t, 0, s.Len())

	// Removing again fails.
	err = s.Remove(a)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	// The uniqueness entry is gone too: the value can be inserted afresh.
	_, ok := s.AtomIndex(element.Text("gone"))
	assert.False(t, ok)
	b, err := s.UseAtom(element.Text("gone"))
	require.NoError(t, err)
	assert.Equal(t, a, b) // slot recycled
}

func TestStore_Remove_UniquenessCleared(t *testing.T) {
	s := NewStore()

	a, err := s.UseAtom(element.Int(1))
	require.NoError(t, err)
	_, err = s.UseAtom(element.Int(2))
	require.NoError(t, err)

	require.NoError(t, s.Remove(a))

	// A different value takes the recycled slot.
	c, err := s.UseAtom(element.Int(3))
	require.NoError(t, err)
	assert.Equal(t, a, c)

	// Re-inserting the removed value allocates a new slot instead of
	// resolving to the stale one.
	d, err := s.UseAtom(element.Int(1))
	require.NoError(t, err)
	assert.Equal(t, element.Index(2), d)
	got, ok := s.AtomIndex(element.Int(1))
	require.True(t, ok)
	assert.Equal(t, d, got)
}

func TestStore_Remove_Guard(t *testing.T) {
	s := NewStore()

	name, err := s.UseAtom(element.Text("PJ"))
	require.NoError(t, err)
	person := s.CreateEntity()
	l, err := s.UseLink(element.Link{From: name, To: person})
	require.NoError(t, err)

	// Both endpoints refuse removal while the link is live.
	err = s.Remove(name)
	assert.ErrorIs(t, err, ErrCannotRemoveLinked)
	var el *ErrRemoveLinked
	require.ErrorAs(t, err, &el)
	assert.Equal(t, name, el.Index)
	assert.Equal(t, 0, el.In)
	assert.Equal(t, 1, el.Out)

	err = s.Remove(person)
	assert.ErrorIs(t, err, ErrCannotRemoveLinked)
	assert.Equal(t, 3, s.Len())

	// Removing the link unblocks the endpoints.
	require.NoError(t, s.Remove(l))
	require.NoError(t, s.Remove(name))
	require.NoError(t, s.Remove(person))
	assert.Equal(t, 0, s.Len())
}

func TestStore_Remove_GuardOnLinks(t *testing.T) {
	s := NewStore()

	a, err := s.UseAtom(element.Text("a"))
	require.NoError(t, err)
	b := s.CreateEntity()
	base, err := s.UseLink(element.Link{From: a, To: b})
	require.NoError(t, err)
	meta, err := s.UseLink(element.Link{From: base, To: b})
	require.NoError(t, err)

	// The guard is uniform: a link referenced by another link refuses
	// removal exactly like an atom or entity would.
	err = s.Remove(base)
	assert.ErrorIs(t, err, ErrCannotRemoveLinked)
	var el *ErrRemoveLinked
	require.ErrorAs(t, err, &el)
	assert.Equal(t, 0, el.In)
	assert.Equal(t, 1, el.Out)

	require.NoError(t, s.Remove(meta))
	require.NoError(t, s.Remove(base))
}

func TestStore_Remove_SelfLoop(t *testing.T) {
	s := NewStore()

	e := s.CreateEntity()
	l, err := s.UseLink(element.Link{From: e, To: e})
	require.NoError(t, err)

	ref, err := s.Get(e)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.InDegree())
	assert.Equal(t, 1, ref.OutDegree())

	err = s.Remove(e)
	assert.ErrorIs(t, err, ErrCannotRemoveLinked)

	require.NoError(t, s.Remove(l))
	require.NoError(t, s.Remove(e))
	assert.Equal(t, 0, s.Len())
}

func TestStore_SlotReuse(t *testing.T) {
	s := NewStore()

	for i := range 3 {
		_, err := s.UseAtom(element.Int(int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(1))
	require.NoError(t, s.Remove(0))

	// Most recently freed slot is recycled first; capacity only grows
	// once the free slots are exhausted.
	a, err := s.UseAtom(element.Int(10))
	require.NoError(t, err)
	assert.Equal(t, element.Index(0), a)
	b, err := s.UseAtom(element.Int(11))
	require.NoError(t, err)
	assert.Equal(t, element.Index(1), b)
	c, err := s.UseAtom(element.Int(12))
	require.NoError(t, err)
	assert.Equal(t, element.Index(3), c)
	assert.Equal(t, 4, s.Cap())
}

func TestStore_All(t *testing.T) {
	s := NewStore()

	for i := range 4 {
		_, err := s.UseAtom(element.Int(int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(1))
	require.NoError(t, s.Remove(2))

	var got []element.Index
	for ref := range s.All() {
		got = append(got, ref.Index())
	}
	assert.Equal(t, []element.Index{0, 3}, got)
}

func TestStore_Stats(t *testing.T) {
	s := NewStore()

	a, err := s.UseAtom(element.Text("n"))
	require.NoError(t, err)
	e := s.CreateEntity()
	_, err = s.UseLink(element.Link{From: a, To: e})
	require.NoError(t, err)
	x, err := s.UseAtom(element.Int(5))
	require.NoError(t, err)
	require.NoError(t, s.Remove(x))

	assert.Equal(t, Stats{
		Elements: 3,
		Atoms:    1,
		Links:    1,
		Entities: 1,
		Slots:    4,
		Free:     1,
	}, s.Stats())
}

func TestRef_Endpoints(t *testing.T) {
	s := NewStore()

	name, err := s.UseAtom(element.Text("PJ"))
	require.NoError(t, err)
	person := s.CreateEntity()
	l1, err := s.UseLink(element.Link{From: name, To: person})
	require.NoError(t, err)
	l2, err := s.UseLink(element.Link{From: person, To: name})
	require.NoError(t, err)

	ref, err := s.Get(l1)
	require.NoError(t, err)
	from, ok := ref.From()
	require.True(t, ok)
	to, ok := ref.To()
	require.True(t, ok)
	assert.Equal(t, name, from.Index())
	assert.Equal(t, person, to.Index())

	// Atoms and entities have no endpoints.
	nameRef, err := s.Get(name)
	require.NoError(t, err)
	_, ok = nameRef.From()
	assert.False(t, ok)
	_, ok = nameRef.Link()
	assert.False(t, ok)

	// Back-link sets iterate in ascending index order.
	var in, out []element.Index
	for i := range nameRef.InLinks() {
		in = append(in, i)
	}
	for i := range nameRef.OutLinks() {
		out = append(out, i)
	}
	assert.Equal(t, []element.Index{l2}, in)
	assert.Equal(t, []element.Index{l1}, out)
	assert.Equal(t, 1, nameRef.InDegree())
	assert.Equal(t, 1, nameRef.OutDegree())
}

func TestStore_Get_Invalid(t *testing.T) {
	s := NewStore()

	_, err := s.Get(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
	assert.Contains(t, err.Error(), "slot 0")
}
