package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"charitychain/chaincode/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("charitychain.campaigncontract")

// campaignObjectType is used for composite keys and as a 'docType' for CouchDB queries.
const campaignObjectType = "Campaign"

// Constants for input validation and limits
const (
	maxStringInputLength = 256
	maxTitleLength       = 512
)

// CharitySmartContract manages campaign and donation records on the ledger.
// @contract:CharitySmartContract
type CharitySmartContract struct {
	contractapi.Contract

	// AllowCreateOverwrite restores the legacy behavior where CreateCampaign
	// replaces an existing record instead of rejecting the duplicate id.
	AllowCreateOverwrite bool
}

// InitLedger is an idempotent bootstrap transaction. It establishes no
// campaign records.
func (s *CharitySmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	logger.Info("CharitySmartContract ledger initialized")
	return nil
}

// CreateCampaign writes a new campaign with no donations and a zero total.
// goalAmount arrives as a string on the wire and is parsed here.
func (s *CharitySmartContract) CreateCampaign(ctx contractapi.TransactionContextInterface,
	id string, title string, goalAmount string, organizer string) (*model.Campaign, error) {

	logger.Infof("CreateCampaign: id '%s', title '%s', goal '%s'", id, title, goalAmount)

	if err := s.validateRequiredString(id, "id", maxStringInputLength); err != nil {
		return nil, err
	}
	if err := s.validateRequiredString(title, "title", maxTitleLength); err != nil {
		return nil, err
	}
	if err := s.validateOptionalString(organizer, "organizer", maxStringInputLength); err != nil {
		return nil, err
	}
	goal, err := parseAmount(goalAmount, "goalAmount")
	if err != nil {
		return nil, err
	}

	campaignKey, err := s.createCampaignCompositeKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CreateCampaign: failed to create composite key for campaign '%s': %w", id, err)
	}

	if !s.AllowCreateOverwrite {
		existing, err := ctx.GetStub().GetState(campaignKey)
		if err != nil {
			return nil, fmt.Errorf("CreateCampaign: failed to check for existing campaign '%s': %w", id, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("campaign with ID '%s' already exists", id)
		}
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateCampaign: failed to get transaction timestamp: %w", err)
	}

	campaign := model.Campaign{
		ObjectType:    campaignObjectType,
		ID:            id,
		Title:         title,
		Organizer:     organizer,
		GoalAmount:    goal,
		Donations:     []model.Donation{},
		TotalDonated:  0,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	campaignBytes, err := json.Marshal(campaign)
	if err != nil {
		return nil, fmt.Errorf("CreateCampaign: failed to marshal campaign '%s': %w", id, err)
	}
	if err := ctx.GetStub().PutState(campaignKey, campaignBytes); err != nil {
		return nil, fmt.Errorf("CreateCampaign: failed to save campaign '%s' to ledger: %w", id, err)
	}

	s.emitCampaignEvent(ctx, "CampaignCreated", &campaign, nil)
	logger.Infof("Campaign '%s' created", id)
	return &campaign, nil
}

// Donate appends a donation to an existing campaign and adds the amount to
// the running total. This is a read-modify-write over a single ledger key;
// conflicting concurrent donations are rejected at commit time by the
// ledger's version check, and the submission layer retries.
func (s *CharitySmartContract) Donate(ctx contractapi.TransactionContextInterface,
	id string, donor string, amount string) (*model.Campaign, error) {

	logger.Infof("Donate: campaign '%s', donor '%s', amount '%s'", id, donor, amount)

	if err := s.validateRequiredString(id, "id", maxStringInputLength); err != nil {
		return nil, err
	}
	if err := s.validateRequiredString(donor, "donor", maxStringInputLength); err != nil {
		return nil, err
	}
	value, err := parseAmount(amount, "amount")
	if err != nil {
		return nil, err
	}

	campaign, err := s.getCampaignByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("Donate: failed to get transaction timestamp: %w", err)
	}

	donation := model.Donation{Donor: donor, Amount: value, At: now}
	campaign.Donations = append(campaign.Donations, donation)
	campaign.TotalDonated += value
	campaign.LastUpdatedAt = now

	campaignKey, err := s.createCampaignCompositeKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Donate: failed to create composite key for campaign '%s': %w", id, err)
	}
	campaignBytes, err := json.Marshal(campaign)
	if err != nil {
		return nil, fmt.Errorf("Donate: failed to marshal campaign '%s': %w", id, err)
	}
	if err := ctx.GetStub().PutState(campaignKey, campaignBytes); err != nil {
		return nil, fmt.Errorf("Donate: failed to save campaign '%s' to ledger: %w", id, err)
	}

	s.emitCampaignEvent(ctx, "DonationReceived", campaign, map[string]interface{}{
		"donor":  donor,
		"amount": value,
	})
	logger.Infof("Donation of %v by '%s' recorded on campaign '%s' (total now %v)", value, donor, id, campaign.TotalDonated)
	return campaign, nil
}

// CampaignExists reports whether a campaign record is present for the id.
func (s *CharitySmartContract) CampaignExists(ctx contractapi.TransactionContextInterface, id string) (bool, error) {
	campaignKey, err := s.createCampaignCompositeKey(ctx, id)
	if err != nil {
		return false, fmt.Errorf("CampaignExists: failed to create key for campaign '%s': %w", id, err)
	}
	existing, err := ctx.GetStub().GetState(campaignKey)
	if err != nil {
		return false, fmt.Errorf("CampaignExists: failed to read campaign '%s' from ledger: %w", id, err)
	}
	return existing != nil, nil
}

var errEmptyCampaignID = errors.New("campaign id cannot be empty")
