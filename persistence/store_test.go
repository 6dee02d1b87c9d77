package persistence

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nullstyle/go-xdr/xdr3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/sloth/shared"
)

func testProof() (*shared.Proof, *shared.ProofMetadata) {
	return &shared.Proof{
			Witness:   bytes.Repeat([]byte{0xab}, 64),
			FinalHash: bytes.Repeat([]byte{0xcd}, 64),
		}, &shared.ProofMetadata{
			Input:      []byte("testy"),
			Bits:       512,
			Iterations: 100,
			Scheme:     shared.SchemeReference,
		}
}

func TestStore_SaveLoad(t *testing.T) {
	r := require.New(t)

	store, err := NewStore(t.TempDir(), zaptest.NewLogger(t), WithMinFreeSpace(0))
	r.NoError(err)

	p, m := testProof()
	key, err := store.Save(p, m)
	r.NoError(err)
	r.Equal(Key(m), key)
	r.FileExists(filepath.Join(store.Dir(), key+Extension))

	lp, lm, err := store.Load(key)
	r.NoError(err)
	r.Equal(p, lp)
	r.Equal(m, lm)

	fp, err := store.Find(m)
	r.NoError(err)
	r.Equal(p, fp)
}

func TestStore_Overwrite(t *testing.T) {
	r := require.New(t)

	store, err := NewStore(t.TempDir(), nil, WithMinFreeSpace(0))
	r.NoError(err)

	p, m := testProof()
	_, err = store.Save(p, m)
	r.NoError(err)

	p.Witness = bytes.Repeat([]byte{0x01}, 64)
	_, err = store.Save(p, m)
	r.NoError(err)

	keys, err := store.List()
	r.NoError(err)
	r.Len(keys, 1)

	lp, err := store.Find(m)
	r.NoError(err)
	r.Equal(p.Witness, lp.Witness)
}

func TestStore_NotExist(t *testing.T) {
	r := require.New(t)

	store, err := NewStore(t.TempDir(), nil)
	r.NoError(err)

	_, m := testProof()
	_, err = store.Find(m)
	r.ErrorIs(err, shared.ErrProofNotExist)
	r.ErrorIs(store.Delete(Key(m)), shared.ErrProofNotExist)
}

func TestStore_InvalidKey(t *testing.T) {
	r := require.New(t)

	store, err := NewStore(t.TempDir(), nil)
	r.NoError(err)

	for _, key := range []string{"", "../etc/passwd", "abcd", Key(&shared.ProofMetadata{}) + "00"} {
		_, _, err := store.Load(key)
		r.ErrorContains(err, "invalid key")
	}
}

func TestStore_ListDelete(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	store, err := NewStore(dir, nil, WithMinFreeSpace(0))
	r.NoError(err)

	p, m := testProof()
	var saved []string
	for _, iterations := range []uint64{1, 2, 3} {
		meta := *m
		meta.Iterations = iterations
		key, err := store.Save(p, &meta)
		r.NoError(err)
		saved = append(saved, key)
	}
	r.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), shared.OwnerReadWrite))
	r.NoError(os.WriteFile(filepath.Join(dir, "garbage"+Extension), []byte("x"), shared.OwnerReadWrite))

	keys, err := store.List()
	r.NoError(err)
	r.ElementsMatch(saved, keys)

	r.NoError(store.Delete(saved[1]))
	keys, err = store.List()
	r.NoError(err)
	r.ElementsMatch([]string{saved[0], saved[2]}, keys)
}

func TestStore_UnsupportedVersion(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	r.NoError(err)

	_, m := testProof()
	key := Key(m)
	rec := record{Version: RecordVersion + 1, Scheme: string(m.Scheme), Bits: m.Bits, Iterations: m.Iterations, Input: m.Input}
	var w bytes.Buffer
	_, err = xdr.Marshal(&w, &rec)
	r.NoError(err)
	r.NoError(os.WriteFile(filepath.Join(dir, key+Extension), w.Bytes(), shared.OwnerReadWrite))

	_, _, err = store.Load(key)
	r.True(errors.Is(err, ErrUnsupportedVersion))
}

func TestStore_UnknownScheme(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	r.NoError(err)

	m := &shared.ProofMetadata{Input: []byte("testy"), Bits: 512, Iterations: 1, Scheme: "wesolowski"}
	key := Key(m)
	rec := record{Version: RecordVersion, Scheme: string(m.Scheme), Bits: m.Bits, Iterations: m.Iterations, Input: m.Input}
	var w bytes.Buffer
	_, err = xdr.Marshal(&w, &rec)
	r.NoError(err)
	r.NoError(os.WriteFile(filepath.Join(dir, key+Extension), w.Bytes(), shared.OwnerReadWrite))

	_, _, err = store.Load(key)
	r.ErrorIs(err, shared.ErrInvalidParameter)
}

func TestStore_KeyMismatch(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	store, err := NewStore(dir, nil, WithMinFreeSpace(0))
	r.NoError(err)

	p, m := testProof()
	key, err := store.Save(p, m)
	r.NoError(err)

	other := *m
	other.Iterations++
	r.NoError(os.Rename(filepath.Join(dir, key+Extension), filepath.Join(dir, Key(&other)+Extension)))

	_, _, err = store.Load(Key(&other))
	r.ErrorContains(err, "does not match its key")
}

func TestStore_NotEnoughSpace(t *testing.T) {
	r := require.New(t)

	store, err := NewStore(t.TempDir(), nil, WithMinFreeSpace(1<<62))
	r.NoError(err)

	p, m := testProof()
	_, err = store.Save(p, m)
	r.ErrorContains(err, "not enough disk space")
}

func TestKey(t *testing.T) {
	r := require.New(t)

	_, m := testProof()
	r.Len(Key(m), 64)
	r.Equal(Key(m), Key(m))

	for _, mutate := range []func(*shared.ProofMetadata){
		func(m *shared.ProofMetadata) { m.Input = []byte("testz") },
		func(m *shared.ProofMetadata) { m.Bits = 1024 },
		func(m *shared.ProofMetadata) { m.Iterations = 101 },
		func(m *shared.ProofMetadata) { m.Scheme = shared.SchemeBound },
	} {
		other := *m
		mutate(&other)
		r.NotEqual(Key(m), Key(&other))
	}
}
