// Package enroll provisions application identities: it registers a new user
// with the organization's certificate authority under the admin identity's
// authority, enrolls it, and stores the issued credentials in the wallet.
// Enrollment is a one-time, out-of-band step relative to the transaction
// hot path.
package enroll

import (
	"context"

	mspclient "github.com/hyperledger/fabric-sdk-go/pkg/client/msp"
	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	mspprovider "github.com/hyperledger/fabric-sdk-go/pkg/common/providers/msp"
	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/fabsdk"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"charitychain/config"
	"charitychain/status"
	"charitychain/wallet"
)

var logger = logging.NewLogger("charitychain.enroll")

// CAClient is the slice of the Fabric CA administration surface this service
// uses. *msp.Client from fabric-sdk-go satisfies it.
type CAClient interface {
	Register(request *mspclient.RegistrationRequest) (string, error)
	Enroll(enrollmentID string, opts ...mspclient.EnrollmentOption) error
	GetSigningIdentity(id string) (mspprovider.SigningIdentity, error)
}

// Service registers and enrolls identities into a wallet store.
type Service struct {
	ca          CAClient
	store       *wallet.Store
	mspID       string
	affiliation string
	adminLabel  string
}

// New builds a Service around an existing CA client.
func New(ca CAClient, store *wallet.Store, mspID, affiliation, adminLabel string) *Service {
	return &Service{ca: ca, store: store, mspID: mspID, affiliation: affiliation, adminLabel: adminLabel}
}

// NewCAClient builds a CA client from the connection profile. The returned
// cleanup func must be called when the client is no longer needed.
func NewCAClient(cfg *config.Config) (CAClient, func(), error) {
	sdk, err := fabsdk.New(fabconfig.FromFile(cfg.ConnectionProfile))
	if err != nil {
		return nil, nil, status.WithCause(status.CAEnrollmentFailure, err, "failed to load connection profile")
	}
	client, err := mspclient.New(sdk.Context(), mspclient.WithOrg(cfg.Organization))
	if err != nil {
		sdk.Close()
		return nil, nil, status.WithCause(status.CAEnrollmentFailure, err, "failed to create CA client")
	}
	return client, func() { sdk.Close() }, nil
}

// Enroll provisions credentials for label. A label already present in the
// store is an idempotent success: existing credentials are never overwritten,
// and the returned bool is false. Requires the admin identity to be present.
// CA failures are surfaced, never retried here; retry policy belongs to the
// caller. The context bounds how long the caller waits for the CA.
func (s *Service) Enroll(ctx context.Context, label string) (bool, error) {
	if s.store.Exists(label) {
		logger.Infof("identity '%s' already enrolled", label)
		return false, nil
	}
	if !s.store.Exists(s.adminLabel) {
		return false, status.Errorf(status.AdminIdentityMissing,
			"admin identity '%s' not found in wallet; enroll the admin first", s.adminLabel)
	}

	err := await(ctx, func() error {
		secret, err := s.ca.Register(&mspclient.RegistrationRequest{
			Name:        label,
			Type:        "client",
			Affiliation: s.affiliation,
		})
		if err != nil {
			// Includes duplicate registrations at the CA despite local
			// absence; the conflict is surfaced, not swallowed.
			return status.WithCause(status.CAEnrollmentFailure, err, "CA registration failed for '"+label+"'")
		}
		if err := s.ca.Enroll(label, mspclient.WithSecret(secret)); err != nil {
			return status.WithCause(status.CAEnrollmentFailure, err, "CA enrollment failed for '"+label+"'")
		}
		return s.storeIdentity(label)
	})
	if err != nil {
		return false, err
	}

	logger.Infof("registered and enrolled identity '%s'", label)
	return true, nil
}

// EnrollAdmin enrolls the admin identity with a pre-registered secret. This
// is the manual provisioning step the rest of enrollment depends on.
func (s *Service) EnrollAdmin(ctx context.Context, secret string) (bool, error) {
	if s.store.Exists(s.adminLabel) {
		logger.Infof("admin identity '%s' already enrolled", s.adminLabel)
		return false, nil
	}

	err := await(ctx, func() error {
		if err := s.ca.Enroll(s.adminLabel, mspclient.WithSecret(secret)); err != nil {
			return status.WithCause(status.CAEnrollmentFailure, err, "CA enrollment failed for admin '"+s.adminLabel+"'")
		}
		return s.storeIdentity(s.adminLabel)
	})
	if err != nil {
		return false, err
	}

	logger.Infof("enrolled admin identity '%s'", s.adminLabel)
	return true, nil
}

func (s *Service) storeIdentity(label string) error {
	si, err := s.ca.GetSigningIdentity(label)
	if err != nil {
		return status.WithCause(status.CAEnrollmentFailure, err, "failed to fetch signing identity for '"+label+"'")
	}
	keyPEM, err := si.PrivateKey().Bytes()
	if err != nil {
		return status.WithCause(status.CAEnrollmentFailure, err, "failed to export private key for '"+label+"'")
	}
	id := gateway.NewX509Identity(s.mspID, string(si.EnrollmentCertificate()), string(keyPEM))
	return s.store.Put(label, id)
}

// await runs f and returns its error, or the context's error if the caller
// stops waiting first. The CA calls have no cancellation point once sent, so
// timeout means "stop waiting", not "undo".
func await(ctx context.Context, f func() error) error {
	done := make(chan error, 1)
	go func() { done <- f() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return status.WithCause(status.CAEnrollmentFailure, ctx.Err(), "gave up waiting for certificate authority")
	}
}
