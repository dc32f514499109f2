package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masahif/seodash/internal/storage"
)

const sample = `
locations:
  - slug: manhattan
    name: Manhattan
    short_name: MAN
    gbp_location_id: locations/111
  - slug: staten-island
    name: Staten Island
keywords:
  - keyword: elder law attorney manhattan
    location: manhattan
    category: elder-law-general
    primary: true
    target_position: 3
  - keyword: old keyword
    location: staten-island
    category: probate
    active: false
competitors:
  - name: Competitor X
    domain: competitor-x.com
    location: manhattan
content:
  - title: Medicaid Planning Explained
    slug: dQw4w9WgXcQ
    url: https://youtu.be/dQw4w9WgXcQ
    type: video
    location: manhattan
`

func TestLoad(t *testing.T) {
	f, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, f.Locations, 2)
	assert.Equal(t, "locations/111", f.Locations[0].GBPLocationID)
	require.Len(t, f.Keywords, 2)
	assert.Equal(t, 3, *f.Keywords[0].TargetPosition)
	assert.False(t, *f.Keywords[1].Active)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown keyword location",
			doc:  "locations: [{slug: manhattan, name: Manhattan}]\nkeywords: [{keyword: k, location: queens, category: probate}]",
			want: ErrUnknownLocation,
		},
		{
			name: "bad category",
			doc:  "locations: [{slug: manhattan, name: Manhattan}]\nkeywords: [{keyword: k, location: manhattan, category: divorce}]",
			want: ErrInvalidCategory,
		},
		{
			name: "bad content type",
			doc:  "content: [{title: t, slug: s, url: u, type: podcast}]",
			want: ErrInvalidContent,
		},
		{
			name: "location without name",
			doc:  "locations: [{slug: manhattan}]",
			want: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("keywordz: []"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Locations)
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, storage.DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f, err := Load(strings.NewReader(sample))
	require.NoError(t, err)

	summary, err := Apply(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Locations: 2, Keywords: 2, Competitors: 1, Content: 1}, summary)

	_, err = Apply(ctx, store, f)
	require.NoError(t, err)

	locations, err := store.Locations(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, 2)

	keywords, err := store.ActiveKeywords(ctx)
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, "manhattan", keywords[0].LocationSlug)
	assert.True(t, keywords[0].IsPrimary)

	competitors, err := store.ActiveCompetitors(ctx)
	require.NoError(t, err)
	assert.Len(t, competitors, 1)

	_, err = store.ContentIDBySlug(ctx, "dQw4w9WgXcQ")
	assert.NoError(t, err)
}

func TestSampleCatalogFile(t *testing.T) {
	data, err := os.Open(filepath.Join("..", "..", "catalog.example.yml"))
	require.NoError(t, err)
	defer func() { _ = data.Close() }()

	f, err := Load(data)
	require.NoError(t, err)
	assert.Len(t, f.Locations, 3)
}
