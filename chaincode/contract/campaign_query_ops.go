package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"charitychain/chaincode/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// getCampaignByID is an internal helper to retrieve and unmarshal a campaign.
// It also ensures schema compliance.
func (s *CharitySmartContract) getCampaignByID(ctx contractapi.TransactionContextInterface, id string) (*model.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("getCampaignByID: campaign id cannot be empty")
	}
	campaignKey, err := s.createCampaignCompositeKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getCampaignByID: failed to create key for campaign '%s': %w", id, err)
	}

	campaignBytes, err := ctx.GetStub().GetState(campaignKey)
	if err != nil {
		return nil, fmt.Errorf("getCampaignByID: failed to read campaign '%s' from ledger: %w", id, err)
	}
	if len(campaignBytes) == 0 {
		// Absence is an explicit error, never an empty record.
		return nil, fmt.Errorf("campaign with ID '%s' does not exist", id)
	}

	var campaign model.Campaign
	if err = json.Unmarshal(campaignBytes, &campaign); err != nil {
		return nil, fmt.Errorf("getCampaignByID: failed to unmarshal campaign '%s' data: %w", id, err)
	}

	ensureCampaignSchemaCompliance(&campaign)
	return &campaign, nil
}

// GetCampaign returns the stored campaign record verbatim.
func (s *CharitySmartContract) GetCampaign(ctx contractapi.TransactionContextInterface, id string) (*model.Campaign, error) {
	logger.Debugf("GetCampaign: querying campaign '%s'", id)
	if err := s.validateRequiredString(id, "id", maxStringInputLength); err != nil {
		return nil, err
	}
	return s.getCampaignByID(ctx, id)
}

// GetAllCampaigns returns every campaign record in the Campaign namespace.
func (s *CharitySmartContract) GetAllCampaigns(ctx contractapi.TransactionContextInterface) ([]*model.Campaign, error) {
	logger.Debug("GetAllCampaigns")

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(campaignObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetAllCampaigns: failed to get campaigns iterator: %w", err)
	}
	defer resultsIterator.Close()

	campaigns := []*model.Campaign{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAllCampaigns: failed to get next campaign from iterator: %v. Skipping.", iterErr)
			continue
		}

		var campaign model.Campaign
		if err := json.Unmarshal(queryResponse.Value, &campaign); err != nil {
			logger.Warningf("GetAllCampaigns: failed to unmarshal campaign data for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		ensureCampaignSchemaCompliance(&campaign)
		campaigns = append(campaigns, &campaign)
	}

	logger.Infof("GetAllCampaigns: returning %d campaigns", len(campaigns))
	return campaigns, nil
}

// GetCampaignHistory returns the committed history of a campaign key, newest
// entry last in commit order as reported by the peer.
func (s *CharitySmartContract) GetCampaignHistory(ctx contractapi.TransactionContextInterface, id string) ([]model.HistoryEntry, error) {
	logger.Debugf("GetCampaignHistory: querying history for campaign '%s'", id)
	if err := s.validateRequiredString(id, "id", maxStringInputLength); err != nil {
		return nil, err
	}

	campaignKey, err := s.createCampaignCompositeKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCampaignHistory: failed to create key for campaign '%s': %w", id, err)
	}

	historyIter, err := ctx.GetStub().GetHistoryForKey(campaignKey)
	if err != nil {
		return nil, fmt.Errorf("GetCampaignHistory: failed to get history for campaign '%s': %w", id, err)
	}
	defer historyIter.Close()

	entries := []model.HistoryEntry{}
	for historyIter.HasNext() {
		historyItem, iterErr := historyIter.Next()
		if iterErr != nil {
			logger.Warningf("GetCampaignHistory: error iterating history for '%s': %v. Skipping entry.", id, iterErr)
			continue
		}
		entries = append(entries, model.HistoryEntry{
			TxID:      historyItem.TxId,
			Timestamp: historyItem.Timestamp.AsTime(),
			IsDelete:  historyItem.IsDelete,
			Value:     string(historyItem.Value),
		})
	}
	return entries, nil
}
