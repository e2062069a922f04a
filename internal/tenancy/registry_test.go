package tenancy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonegrid.org/internal/docstore/mem"
)

func TestRegisterAndList(t *testing.T) {
	reg := NewRegistry(mem.New())
	ctx := context.Background()

	rec, err := reg.Register(ctx, ZoneRecord{
		Country:  "Gabon",
		ZoneCode: "GSEZ",
		Phase:    1,
		LandArea: "1126 ha",
		ZoneName: "Nkok SEZ",
	})
	require.NoError(t, err)
	assert.Equal(t, "gabon", rec.Country, "country stored lowercased")
	assert.Equal(t, "gabon_GSEZ", rec.Key())
	assert.False(t, rec.CreatedAt.IsZero())

	_, err = reg.Register(ctx, ZoneRecord{Country: "benin", ZoneCode: "GDIZ", Phase: 1, LandArea: "1640 ha"})
	require.NoError(t, err)

	all, err := reg.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	gabonOnly, err := reg.List(ctx, "GABON")
	require.NoError(t, err)
	require.Len(t, gabonOnly, 1)
	assert.Equal(t, "GSEZ", gabonOnly[0].ZoneCode)
	assert.Equal(t, "Nkok SEZ", gabonOnly[0].ZoneName)
}

func TestRegisterDuplicateFails(t *testing.T) {
	reg := NewRegistry(mem.New())
	ctx := context.Background()

	first := ZoneRecord{Country: "gabon", ZoneCode: "GSEZ", Phase: 1, LandArea: "1126 ha"}
	_, err := reg.Register(ctx, first)
	require.NoError(t, err)

	_, err = reg.Register(ctx, first)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneExists), "got %v", err)

	// Same zone code under another country is a different key.
	_, err = reg.Register(ctx, ZoneRecord{Country: "togo", ZoneCode: "GSEZ", Phase: 1, LandArea: "90 ha"})
	require.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(mem.New())
	ctx := context.Background()

	cases := []struct {
		name string
		rec  ZoneRecord
	}{
		{"missing country", ZoneRecord{ZoneCode: "GSEZ", Phase: 1, LandArea: "1 ha"}},
		{"bad zone code", ZoneRecord{Country: "gabon", ZoneCode: "gs", Phase: 1, LandArea: "1 ha"}},
		{"zero phase", ZoneRecord{Country: "gabon", ZoneCode: "GSEZ", LandArea: "1 ha"}},
		{"missing land area", ZoneRecord{Country: "gabon", ZoneCode: "GSEZ", Phase: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Register(ctx, tc.rec)
			assert.Error(t, err)
		})
	}
}
