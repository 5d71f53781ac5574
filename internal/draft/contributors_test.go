package draft_test

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icmasure/internal/draft"
)

func TestAddRemoveRoundTrip(t *testing.T) {
	var l draft.List
	l = l.Add()
	require.Len(t, l, 1)
	assert.Equal(t, draft.Contributor{}, l[0])

	l = l.Remove(0)
	assert.Len(t, l, 0)
}

func TestRemoveReindexesAndIgnoresOutOfRange(t *testing.T) {
	l := draft.List{{FirstName: "a"}, {FirstName: "b"}, {FirstName: "c"}}

	got := l.Remove(1)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].FirstName)
	assert.Equal(t, "c", got[1].FirstName)

	assert.Len(t, l.Remove(-1), 3)
	assert.Len(t, l.Remove(3), 3)
}

func TestUpdateTouchesExactlyOneEntry(t *testing.T) {
	l := draft.List{
		{FirstName: "Ana", Email: "ana@example.com"},
		{FirstName: "Budi", Email: "budi@example.com"},
		{FirstName: "Citra", Email: "citra@example.com"},
	}
	before := make(draft.List, len(l))
	copy(before, l)

	got, err := l.Update(1, "email", "budi@unsoed.ac.id")
	require.NoError(t, err)
	assert.Equal(t, "budi@unsoed.ac.id", got[1].Email)
	assert.Equal(t, "Budi", got[1].FirstName)

	// entries at every other index are byte-for-byte unchanged,
	// and the input list itself was not mutated
	assert.Empty(t, cmp.Diff(before[0], got[0]))
	assert.Empty(t, cmp.Diff(before[2], got[2]))
	assert.Empty(t, cmp.Diff(before, l))
}

func TestUpdateErrors(t *testing.T) {
	l := draft.List{{}}

	_, err := l.Update(5, "email", "x")
	assert.Error(t, err)

	_, err = l.Update(0, "nickname", "x")
	assert.Error(t, err)

	_, err = l.Update(0, "country_id", "not-a-number")
	assert.Error(t, err)

	got, err := l.Update(0, "country_id", "62")
	require.NoError(t, err)
	assert.Equal(t, 62, got[0].CountryID)
}

func TestFromForm(t *testing.T) {
	form := url.Values{}
	form.Set("contributors[0][first_name]", " Ana ")
	form.Set("contributors[0][email]", "ana@example.com")
	form.Set("contributors[0][country_id]", "62")
	form.Set("contributors[1][first_name]", "Budi")
	// index 3 without index 2: decoding stops at the gap
	form.Set("contributors[3][first_name]", "ghost")

	l := draft.FromForm(form)
	require.Len(t, l, 2)
	assert.Equal(t, "Ana", l[0].FirstName)
	assert.Equal(t, 62, l[0].CountryID)
	assert.Equal(t, "Budi", l[1].FirstName)
}

func TestApplyActions(t *testing.T) {
	l := draft.List{{FirstName: "a"}}

	got, changed := draft.Apply(l, "add_contributor")
	assert.True(t, changed)
	assert.Len(t, got, 2)

	got, changed = draft.Apply(l, "remove_contributor:0")
	assert.True(t, changed)
	assert.Len(t, got, 0)

	got, changed = draft.Apply(l, "remove_contributor:bogus")
	assert.True(t, changed)
	assert.Len(t, got, 1)

	_, changed = draft.Apply(l, "")
	assert.False(t, changed)
}

func TestFieldErrorsKeying(t *testing.T) {
	fe := draft.FieldErrors{
		"contributors.2.email": "invalid email",
		"title":                "required",
	}
	assert.Equal(t, "invalid email", fe.For(2, "email"))
	assert.Equal(t, "", fe.For(0, "email"))
	assert.Equal(t, "required", fe.Field("title"))
	assert.True(t, fe.Any())
}
