// Package wallet is the identity store: a durable, file-system-backed map of
// human-readable labels to X.509 credentials. It wraps the fabric-sdk-go
// gateway wallet so stored entries stay directly usable for gateway
// connections.
package wallet

import (
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"
	"github.com/pkg/errors"

	"charitychain/status"
)

var logger = logging.NewLogger("charitychain.wallet")

// ErrNotFound reports an absent label. Absence is not a store failure;
// callers map it to their own taxonomy code.
var ErrNotFound = errors.New("identity not found in wallet")

// Store persists labelled X.509 identities, one entry per label. Reads are
// concurrent-safe; writes are atomic per label.
type Store struct {
	wallet *gateway.Wallet
}

// NewFileStore opens (creating if needed) a file-system wallet at path.
func NewFileStore(path string) (*Store, error) {
	w, err := gateway.NewFileSystemWallet(path)
	if err != nil {
		return nil, status.WithCause(status.StoreUnavailable, err, "failed to open wallet at "+path)
	}
	return &Store{wallet: w}, nil
}

// Put stores an identity under label, replacing any previous entry.
func (s *Store) Put(label string, id *gateway.X509Identity) error {
	if err := s.wallet.Put(label, id); err != nil {
		return status.WithCause(status.StoreUnavailable, err, "failed to store identity '"+label+"'")
	}
	logger.Debugf("stored identity '%s'", label)
	return nil
}

// Get returns the identity stored under label, or ErrNotFound.
func (s *Store) Get(label string) (*gateway.X509Identity, error) {
	if !s.wallet.Exists(label) {
		return nil, errors.WithMessage(ErrNotFound, label)
	}
	id, err := s.wallet.Get(label)
	if err != nil {
		return nil, status.WithCause(status.StoreUnavailable, err, "failed to read identity '"+label+"'")
	}
	x509, ok := id.(*gateway.X509Identity)
	if !ok {
		return nil, status.Errorf(status.StoreUnavailable, "identity '%s' has unsupported credential type", label)
	}
	return x509, nil
}

// Exists reports whether an identity is stored under label.
func (s *Store) Exists(label string) bool {
	return s.wallet.Exists(label)
}

// List returns the labels of all stored identities.
func (s *Store) List() ([]string, error) {
	labels, err := s.wallet.List()
	if err != nil {
		return nil, status.WithCause(status.StoreUnavailable, err, "failed to list wallet")
	}
	return labels, nil
}

// SDKWallet exposes the underlying gateway wallet for session setup.
func (s *Store) SDKWallet() *gateway.Wallet {
	return s.wallet
}
