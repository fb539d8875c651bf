// Package ledger opens scoped sessions to the Fabric network and submits
// campaign contract transactions through them. A session is created per
// logical operation and must be closed on every exit path; all call sites
// pair Dial with a deferred Close.
package ledger

import (
	"time"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/logging"
	fabconfig "github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"charitychain/config"
	"charitychain/status"
	"charitychain/wallet"
)

var logger = logging.NewLogger("charitychain.ledger")

// Transaction names exposed by the campaign contract.
const (
	TxInitLedger      = "InitLedger"
	TxCreateCampaign  = "CreateCampaign"
	TxDonate          = "Donate"
	TxGetCampaign     = "GetCampaign"
	TxGetAllCampaigns = "GetAllCampaigns"
	TxCampaignHistory = "GetCampaignHistory"
)

// invoker is the slice of *gateway.Contract the submission layer uses.
type invoker interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

// Session is a single-identity connection to the campaign contract on one
// channel. Sessions are not shared across concurrent logical operations.
type Session struct {
	gw             *gateway.Gateway
	contract       invoker
	label          string
	maxAttempts    int
	initialBackoff time.Duration
}

// Dial opens a session for the identity stored under label. The caller owns
// the session and must Close it regardless of outcome.
func Dial(cfg *config.Config, store *wallet.Store, label string) (*Session, error) {
	if !store.Exists(label) {
		return nil, status.Errorf(status.UnknownIdentity, "identity '%s' not found in wallet", label)
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(fabconfig.FromFile(cfg.ConnectionProfile)),
		gateway.WithIdentity(store.SDKWallet(), label),
	)
	if err != nil {
		return nil, status.WithCause(status.ConnectionFailure, err, "failed to connect gateway as '"+label+"'")
	}

	network, err := gw.GetNetwork(cfg.Channel)
	if err != nil {
		gw.Close()
		return nil, status.WithCause(status.ConnectionFailure, err, "failed to get network channel '"+cfg.Channel+"'")
	}

	logger.Debugf("session opened as '%s' on channel '%s' for chaincode '%s'", label, cfg.Channel, cfg.Chaincode)
	return &Session{
		gw:             gw,
		contract:       network.GetContract(cfg.Chaincode),
		label:          label,
		maxAttempts:    cfg.MaxSubmitAttempts,
		initialBackoff: 200 * time.Millisecond,
	}, nil
}

// Close releases the network connection. Safe to call once per session on
// any exit path.
func (s *Session) Close() {
	if s.gw != nil {
		s.gw.Close()
		logger.Debugf("session closed for '%s'", s.label)
	}
}
