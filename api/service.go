// Package api exposes the campaign contract over HTTP. Handlers are thin:
// each request opens a ledger session for the configured application
// identity, invokes the contract and renders the chaincode payload back as
// JSON.
package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"charitychain/chaincode/model"
	"charitychain/config"
	"charitychain/ledger"
	"charitychain/wallet"
)

// CampaignSession is the slice of ledger.Session the service needs.
type CampaignSession interface {
	Submit(ctx context.Context, name string, args ...string) ([]byte, error)
	Evaluate(ctx context.Context, name string, args ...string) ([]byte, error)
	Close()
}

// SessionFactory opens a session for the given identity label.
type SessionFactory func(label string) (CampaignSession, error)

type Service struct {
	cfg     *config.Config
	connect SessionFactory
}

func NewService(cfg *config.Config, store *wallet.Store) *Service {
	return &Service{
		cfg: cfg,
		connect: func(label string) (CampaignSession, error) {
			return ledger.Dial(cfg, store, label)
		},
	}
}

// withTimeout bounds a request context with the configured submit timeout
// so a hung peer cannot hold the request open indefinitely.
func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.SubmitTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.SubmitTimeout)
}

func (s *Service) CreateCampaign(ctx context.Context, id, title, goalAmount, organizer string) (*model.Campaign, error) {
	if id == "" {
		id = uuid.New().String()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	session, err := s.connect(s.cfg.UserLabel)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	payload, err := session.Submit(ctx, ledger.TxCreateCampaign, id, title, goalAmount, organizer)
	if err != nil {
		return nil, err
	}
	return decodeCampaign(payload)
}

func (s *Service) Donate(ctx context.Context, id, donor, amount string) (*model.Campaign, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	session, err := s.connect(s.cfg.UserLabel)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	payload, err := session.Submit(ctx, ledger.TxDonate, id, donor, amount)
	if err != nil {
		return nil, err
	}
	return decodeCampaign(payload)
}

func (s *Service) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	session, err := s.connect(s.cfg.UserLabel)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	payload, err := session.Evaluate(ctx, ledger.TxGetCampaign, id)
	if err != nil {
		return nil, err
	}
	return decodeCampaign(payload)
}

func (s *Service) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	session, err := s.connect(s.cfg.UserLabel)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	payload, err := session.Evaluate(ctx, ledger.TxGetAllCampaigns)
	if err != nil {
		return nil, err
	}
	var campaigns []*model.Campaign
	if err := json.Unmarshal(payload, &campaigns); err != nil {
		return nil, errors.Wrap(err, "failed to decode campaign list")
	}
	if campaigns == nil {
		campaigns = []*model.Campaign{}
	}
	return campaigns, nil
}

func (s *Service) CampaignHistory(ctx context.Context, id string) ([]*model.HistoryEntry, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	session, err := s.connect(s.cfg.UserLabel)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	payload, err := session.Evaluate(ctx, ledger.TxCampaignHistory, id)
	if err != nil {
		return nil, err
	}
	var history []*model.HistoryEntry
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, errors.Wrap(err, "failed to decode campaign history")
	}
	if history == nil {
		history = []*model.HistoryEntry{}
	}
	return history, nil
}

func decodeCampaign(payload []byte) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := json.Unmarshal(payload, &campaign); err != nil {
		return nil, errors.Wrap(err, "failed to decode campaign payload")
	}
	return &campaign, nil
}
