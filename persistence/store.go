// Package persistence stores proofs on disk, one XDR-encoded record per file.
package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/natefinch/atomic"
	"github.com/nullstyle/go-xdr/xdr3"
	"github.com/spacemeshos/sha256-simd"
	"go.uber.org/zap"

	"github.com/spacemeshos/sloth/shared"
)

const (
	// Extension is the file extension of a stored proof.
	Extension = ".sloth"

	// RecordVersion is the version of the on-disk record format.
	RecordVersion = 1

	DefaultMinFreeSpace = 16 * bytefmt.MEGABYTE
)

var ErrUnsupportedVersion = errors.New("unsupported record version")

type record struct {
	Version    uint32
	Scheme     string
	Bits       uint32
	Iterations uint64
	Input      []byte
	Witness    []byte
	FinalHash  []byte
}

type Store struct {
	dir          string
	minFreeSpace uint64
	logger       *zap.Logger
}

type OptionFunc func(*Store)

// WithMinFreeSpace sets the free space, in bytes, Save requires on the store's volume.
func WithMinFreeSpace(n uint64) OptionFunc {
	return func(s *Store) {
		s.minFreeSpace = n
	}
}

// NewStore opens the store at dir, creating the directory if needed.
func NewStore(dir string, logger *zap.Logger, opts ...OptionFunc) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, shared.OwnerReadWriteExec); err != nil {
		return nil, fmt.Errorf("dir creation failure: %w", err)
	}

	s := &Store{
		dir:          dir,
		minFreeSpace: DefaultMinFreeSpace,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Key returns the identifier of the proof for m.
func Key(m *shared.ProofMetadata) string {
	var params [12]byte
	binary.BigEndian.PutUint32(params[:4], m.Bits)
	binary.BigEndian.PutUint64(params[4:], m.Iterations)

	h := sha256.New()
	h.Write([]byte(m.Scheme))
	h.Write([]byte{0})
	h.Write(params[:])
	h.Write(m.Input)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) path(key string) (string, error) {
	if b, err := hex.DecodeString(key); err != nil || len(b) != sha256.Size {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(s.dir, key+Extension), nil
}

// Save writes the proof and returns its key. An existing record for the same
// metadata is replaced.
func (s *Store) Save(p *shared.Proof, m *shared.ProofMetadata) (string, error) {
	if err := shared.ValidateSpace(s.dir, s.minFreeSpace); err != nil {
		return "", err
	}

	key := Key(m)
	filename, err := s.path(key)
	if err != nil {
		return "", err
	}

	rec := record{
		Version:    RecordVersion,
		Scheme:     string(m.Scheme),
		Bits:       m.Bits,
		Iterations: m.Iterations,
		Input:      m.Input,
		Witness:    p.Witness,
		FinalHash:  p.FinalHash,
	}

	var w bytes.Buffer
	if _, err := xdr.Marshal(&w, &rec); err != nil {
		return "", fmt.Errorf("serialization failure: %w", err)
	}
	size := w.Len()
	if err := atomic.WriteFile(filename, &w); err != nil {
		return "", fmt.Errorf("write to disk failure: %w", err)
	}

	s.logger.Debug("persistence: saved proof",
		zap.String("key", key),
		zap.String("size", bytefmt.ByteSize(uint64(size))),
	)
	return key, nil
}

// Load reads the proof stored under key.
func (s *Store) Load(key string) (*shared.Proof, *shared.ProofMetadata, error) {
	filename, err := s.path(key)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(filename)
	switch {
	case os.IsNotExist(err):
		return nil, nil, shared.ErrProofNotExist
	case err != nil:
		return nil, nil, fmt.Errorf("read file failure: %w", err)
	}

	var rec record
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &rec); err != nil {
		return nil, nil, fmt.Errorf("deserialization failure: %w", err)
	}
	if rec.Version != RecordVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}

	p := &shared.Proof{
		Witness:   rec.Witness,
		FinalHash: rec.FinalHash,
	}
	m := &shared.ProofMetadata{
		Input:      rec.Input,
		Bits:       rec.Bits,
		Iterations: rec.Iterations,
		Scheme:     shared.Scheme(rec.Scheme),
	}
	if err := m.Scheme.Validate(); err != nil {
		return nil, nil, fmt.Errorf("record %v: %w", filename, err)
	}
	if Key(m) != key {
		return nil, nil, fmt.Errorf("record %v does not match its key", filename)
	}
	return p, m, nil
}

// Find loads the proof computed with the parameters in m.
func (s *Store) Find(m *shared.ProofMetadata) (*shared.Proof, error) {
	p, _, err := s.Load(Key(m))
	return p, err
}

// List returns the keys of all stored proofs, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), Extension)
		if _, err := s.path(key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Delete(key string) error {
	filename, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(filename)
	switch {
	case os.IsNotExist(err):
		return shared.ErrProofNotExist
	case err != nil:
		return fmt.Errorf("failed to delete file (%v): %w", filename, err)
	}

	s.logger.Debug("persistence: deleted proof", zap.String("key", key))
	return nil
}
