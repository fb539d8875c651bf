package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"charitychain/chaincode/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Core Helper Methods ---

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *CharitySmartContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

// createCampaignCompositeKey creates a composite key for a campaign.
func (s *CharitySmartContract) createCampaignCompositeKey(ctx contractapi.TransactionContextInterface, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errEmptyCampaignID
	}
	return ctx.GetStub().CreateCompositeKey(campaignObjectType, []string{id})
}

// --- Validation Helper Functions ---

func (s *CharitySmartContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(input) > max {
		return fmt.Errorf("%s exceeds max length %d", field, max)
	}
	return nil
}

func (s *CharitySmartContract) validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%s exceeds max length %d", field, max)
	}
	return nil
}

// parseAmount parses a wire-format numeric argument. Amounts must be finite
// and non-negative; a zero amount is accepted.
func parseAmount(str, field string) (float64, error) {
	sTrimmed := strings.TrimSpace(str)
	if sTrimmed == "" {
		return 0, fmt.Errorf("%s cannot be empty", field)
	}
	v, err := strconv.ParseFloat(sTrimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': must be a number", field, str)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s '%s': must be finite", field, str)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s cannot be negative", field)
	}
	return v, nil
}

// --- Other General Helper Methods ---

// ensureCampaignSchemaCompliance initializes nil slices so that marshalled
// records always carry an array, never null.
func ensureCampaignSchemaCompliance(campaign *model.Campaign) {
	if campaign == nil {
		return
	}
	if campaign.Donations == nil {
		campaign.Donations = []model.Donation{}
	}
}

// emitCampaignEvent sends a chaincode event. Failures are logged, never fatal.
func (s *CharitySmartContract) emitCampaignEvent(ctx contractapi.TransactionContextInterface, eventName string, campaign *model.Campaign, additionalPayload map[string]interface{}) {
	if campaign == nil {
		logger.Errorf("emitCampaignEvent: cannot emit event '%s', campaign is nil", eventName)
		return
	}
	payload := map[string]interface{}{
		"campaignId":   campaign.ID,
		"title":        campaign.Title,
		"totalDonated": campaign.TotalDonated,
		"timestamp":    campaign.LastUpdatedAt.Format(time.RFC3339),
	}
	for k, v := range additionalPayload {
		payload[k] = v
	}
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitCampaignEvent: failed to marshal payload for event '%s' on campaign '%s': %v", eventName, campaign.ID, err)
		return
	}
	if errSet := ctx.GetStub().SetEvent(eventName, eventBytes); errSet != nil {
		logger.Warningf("emitCampaignEvent: failed to set event '%s' for campaign '%s': %v", eventName, campaign.ID, errSet)
	}
}
