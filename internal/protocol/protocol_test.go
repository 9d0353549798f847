package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/runefront/internal/hash"
)

func TestCatalogueComplete(t *testing.T) {
	all := All()
	require.Len(t, all, 43)

	for _, p := range all {
		info := p.Info()
		assert.NotEmpty(t, info.Name, "protocol %d has no name", p)
		assert.NotEmpty(t, info.Doc, "%s has no doc", info.Name)
		assert.Equal(t, p.String(), info.Name)
		assert.Equal(t, p.Hash(), info.Hash)
	}
}

func TestFingerprintsDistinctAndStable(t *testing.T) {
	seen := make(map[hash.Hash]Protocol)
	for _, p := range All() {
		h := p.Hash()
		require.False(t, h.IsEmpty(), p.String())
		if prev, ok := seen[h]; ok {
			t.Fatalf("%s and %s share fingerprint %s", prev, p, h)
		}
		seen[h] = p

		assert.Equal(t, h, p.Hash(), "repeated conversion")
		assert.Equal(t, hash.Protocol(p.String()), h)
	}
}

func TestLookups(t *testing.T) {
	tests := []struct {
		name string
		want Protocol
	}{
		{"GET", Get},
		{"ADD_ASSIGN", AddAssign},
		{"DISPLAY_FMT", DisplayFmt},
		{"INTO_ITER", IntoIter},
		{"CLONE", Clone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ByName(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, p)

			p, ok = ByHash(tt.want.Hash())
			require.True(t, ok)
			assert.Equal(t, tt.want, p)
		})
	}

	_, ok := ByName("add")
	assert.False(t, ok, "names are case sensitive")
	_, ok = ByHash(hash.Ident("ADD"))
	assert.False(t, ok)
}

func TestInvalidProtocol(t *testing.T) {
	bad := Protocol(200)
	assert.False(t, bad.Valid())
	assert.Equal(t, "Protocol(invalid)", bad.String())
	assert.Equal(t, hash.Empty, bad.Hash())
}
