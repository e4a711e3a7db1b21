package facet_test

import (
	"testing"

	"github.com/gnames/gnfacet/pkg/facet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		msg  string
		key  facet.Key
		kind facet.Kind
	}{
		{"size is enum", facet.Size, facet.KindEnum},
		{"diet is enum", facet.Diet, facet.KindEnum},
		{"colors is bitmask", facet.Colors, facet.KindBitmask},
		{"call_types is bitmask", facet.CallTypes, facet.KindBitmask},
		{"unknown key", facet.Key("plumage"), 0},
	}

	for _, v := range tests {
		assert.Equal(t, v.kind, facet.KindOf(v.key), v.msg)
	}
}

func TestEncodeCodes(t *testing.T) {
	reg := facet.NewRegistry()
	err := reg.Append("", facet.Size, []facet.Option{
		{Slug: "small"}, {Slug: "medium"}, {Slug: "large"},
	})
	require.NoError(t, err)
	err = reg.Append("", facet.Colors, []facet.Option{
		{Slug: "red"}, {Slug: "blue"}, {Slug: "green"},
	})
	require.NoError(t, err)

	tests := []struct {
		msg  string
		key  facet.Key
		slug string
		code int64
		ok   bool
	}{
		{"first enum slug", facet.Size, "small", 1, true},
		{"third enum slug", facet.Size, "large", 3, true},
		{"case and space normalized", facet.Size, " Medium ", 2, true},
		{"first mask slug", facet.Colors, "red", 1, true},
		{"third mask slug is a bit", facet.Colors, "green", 4, true},
		{"unknown slug", facet.Size, "tiny", 0, false},
		{"empty slug", facet.Size, "", 0, false},
	}

	for _, v := range tests {
		code, ok := reg.Encode("", v.key, v.slug)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.code, code, v.msg)
	}
}

func TestAppendOnly(t *testing.T) {
	reg := facet.NewRegistry()
	err := reg.Append("", facet.Habitats, []facet.Option{
		{Slug: "forest"}, {Slug: "wetland"},
	})
	require.NoError(t, err)

	t.Run("appending keeps existing codes", func(t *testing.T) {
		before, _ := reg.Encode("", facet.Habitats, "wetland")
		err := reg.Append("", facet.Habitats, []facet.Option{{Slug: "desert"}})
		require.NoError(t, err)

		after, _ := reg.Encode("", facet.Habitats, "wetland")
		assert.Equal(t, before, after)

		code, ok := reg.Encode("", facet.Habitats, "desert")
		assert.True(t, ok)
		assert.Equal(t, int64(4), code)
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		err := reg.Append("", facet.Habitats, []facet.Option{{Slug: "forest"}})
		assert.Error(t, err)
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		err := reg.Append("", facet.Key("plumage"), []facet.Option{{Slug: "x"}})
		assert.Error(t, err)
	})
}

func TestScopeFallback(t *testing.T) {
	reg := facet.NewRegistry()
	err := reg.Append("", facet.Size, []facet.Option{
		{Slug: "small"}, {Slug: "large"},
	})
	require.NoError(t, err)
	err = reg.Append("marine", facet.Size, []facet.Option{
		{Slug: "plankton"}, {Slug: "whale"},
	})
	require.NoError(t, err)

	t.Run("scoped list wins", func(t *testing.T) {
		code, ok := reg.Encode("marine", facet.Size, "whale")
		assert.True(t, ok)
		assert.Equal(t, int64(2), code)

		_, ok = reg.Encode("marine", facet.Size, "small")
		assert.False(t, ok, "global slugs invisible under an overlay")
	})

	t.Run("empty scoped list falls back to global", func(t *testing.T) {
		code, ok := reg.Encode("marine", facet.Colors, "red")
		assert.False(t, ok)
		assert.Equal(t, int64(0), code)

		err := reg.Append("", facet.Colors, []facet.Option{{Slug: "red"}})
		require.NoError(t, err)

		code, ok = reg.Encode("marine", facet.Colors, "red")
		assert.True(t, ok)
		assert.Equal(t, int64(1), code)
	})

	t.Run("layout has no fallback", func(t *testing.T) {
		assert.Empty(t, reg.Layout("marine", facet.Colors))
		assert.Equal(t, []string{"plankton", "whale"},
			reg.Layout("marine", facet.Size))
	})
}

func TestMaskRoundTrip(t *testing.T) {
	reg := facet.NewRegistry()
	err := reg.Append("", facet.Colors, []facet.Option{
		{Slug: "red"}, {Slug: "blue"}, {Slug: "green"}, {Slug: "black"},
	})
	require.NoError(t, err)

	mask := reg.EncodeMask("", facet.Colors,
		[]string{"red", "green", "chartreuse"})
	assert.Equal(t, int64(5), mask, "unknown slug dropped silently")

	opts := reg.DecodeMask("", facet.Colors, mask)
	require.Len(t, opts, 2)
	assert.Equal(t, "red", opts[0].Slug)
	assert.Equal(t, "green", opts[1].Slug)
	assert.Equal(t, "Green", opts[1].Label, "label derived from slug")
}

func TestVerifyLayout(t *testing.T) {
	tests := []struct {
		msg     string
		stored  []string
		current []string
		ok      bool
	}{
		{"identical", []string{"a", "b"}, []string{"a", "b"}, true},
		{"appended", []string{"a", "b"}, []string{"a", "b", "c"}, true},
		{"empty stored", nil, []string{"a"}, true},
		{"shrank", []string{"a", "b"}, []string{"a"}, false},
		{"reordered", []string{"a", "b"}, []string{"b", "a"}, false},
		{"inserted in middle", []string{"a", "b"}, []string{"a", "x", "b"}, false},
	}

	for _, v := range tests {
		err := facet.VerifyLayout(v.stored, v.current)
		if v.ok {
			assert.NoError(t, err, v.msg)
		} else {
			assert.Error(t, err, v.msg)
		}
	}
}

func TestParseSlugList(t *testing.T) {
	tests := []struct {
		msg string
		raw any
		res []string
	}{
		{"nil", nil, nil},
		{"single string", "red", []string{"red"}},
		{"comma separated", "red,blue", []string{"red", "blue"}},
		{"repeated values", "red,Red, RED", []string{"red"}},
		{"slice of strings", []string{"red", "blue"}, []string{"red", "blue"}},
		{"slice with commas", []string{"red,blue", "green"},
			[]string{"red", "blue", "green"}},
		{"blank entries", ",, ,", nil},
		{"unsupported shape", 42, nil},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, facet.ParseSlugList(v.raw), v.msg)
	}
}

func TestParseOptionList(t *testing.T) {
	opts := facet.ParseOptionList("br|Brown\nred, blue\n\n")
	require.Len(t, opts, 3)
	assert.Equal(t, facet.Option{Slug: "br", Label: "Brown"}, opts[0])
	assert.Equal(t, "red", opts[1].Slug)
	assert.Empty(t, opts[1].Label)
	assert.Equal(t, "blue", opts[2].Slug)
}

func TestMergeRow(t *testing.T) {
	famOld, famNew := int64(10), int64(20)
	extinct := true

	stored := &facet.Row{
		TaxonID:    7,
		Scope:      "",
		Codes:      facet.Codes{Size: 2, ColorMask: 3},
		Rank:       "species",
		Extinct:    false,
		Popularity: 42,
		FamilyID:   &famOld,
	}

	t.Run("codes replaced, sticky fields kept", func(t *testing.T) {
		up := facet.RowUpdate{Codes: facet.Codes{Size: 1}}
		res := facet.MergeRow(stored, 7, "", up)

		assert.Equal(t, int64(1), res.Size)
		assert.Equal(t, int64(0), res.ColorMask, "masks replaced wholesale")
		assert.Equal(t, "species", res.Rank)
		assert.Equal(t, int64(42), res.Popularity,
			"popularity owned by view counters")
		require.NotNil(t, res.FamilyID)
		assert.Equal(t, famOld, *res.FamilyID)
	})

	t.Run("non-zero incoming values win", func(t *testing.T) {
		up := facet.RowUpdate{
			Rank:     "genus",
			Extinct:  &extinct,
			FamilyID: &famNew,
		}
		res := facet.MergeRow(stored, 7, "", up)

		assert.Equal(t, "genus", res.Rank)
		assert.True(t, res.Extinct)
		assert.Equal(t, famNew, *res.FamilyID)
	})

	t.Run("no stored row", func(t *testing.T) {
		up := facet.RowUpdate{Codes: facet.Codes{Diet: 3}}
		res := facet.MergeRow(nil, 9, "marine", up)

		assert.Equal(t, int64(9), res.TaxonID)
		assert.Equal(t, "marine", res.Scope)
		assert.Equal(t, int64(3), res.Diet)
		assert.Empty(t, res.Rank)
		assert.Nil(t, res.FamilyID)
	})
}
