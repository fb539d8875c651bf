package ledger

import (
	"context"
	"strings"
	"time"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	sdkstatus "github.com/hyperledger/fabric-sdk-go/pkg/common/errors/status"

	"charitychain/status"
)

// Submit invokes a state-changing transaction and blocks until commit or
// failure. Commit-time version conflicts are retried with doubling backoff
// up to the session's attempt budget; every other failure is surfaced
// immediately. The context bounds the total wait; once a transaction has
// been sent there is no mid-flight cancellation, so a timeout means "stop
// waiting", not "undo".
func (s *Session) Submit(ctx context.Context, name string, args ...string) ([]byte, error) {
	backoff := s.initialBackoff
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		payload, err := s.await(ctx, func() ([]byte, error) {
			return s.contract.SubmitTransaction(name, args...)
		})
		if err == nil {
			return payload, nil
		}

		lastErr = classify(err)
		if !status.CodeOf(lastErr).Retryable() {
			return nil, lastErr
		}
		if attempt == s.maxAttempts {
			break
		}

		logger.Warnf("commit conflict on '%s' (attempt %d/%d), retrying in %v", name, attempt, s.maxAttempts, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, status.WithCause(status.ConnectionFailure, ctx.Err(), "gave up waiting to retry '"+name+"'")
		}
		backoff *= 2
	}

	return nil, lastErr
}

// Evaluate invokes a read-only transaction on an endorsing peer without
// going through ordering. Never retried.
func (s *Session) Evaluate(ctx context.Context, name string, args ...string) ([]byte, error) {
	payload, err := s.await(ctx, func() ([]byte, error) {
		return s.contract.EvaluateTransaction(name, args...)
	})
	if err != nil {
		return nil, classify(err)
	}
	return payload, nil
}

// await runs f and returns its result, or stops waiting when the context
// expires. f keeps running in the background in that case; the session is
// still closed by the deferring call site.
func (s *Session) await(ctx context.Context, f func() ([]byte, error)) ([]byte, error) {
	type result struct {
		payload []byte
		err     error
	}
	done := make(chan result, 1)
	go func() {
		payload, err := f()
		done <- result{payload: payload, err: err}
	}()
	select {
	case r := <-done:
		return r.payload, r.err
	case <-ctx.Done():
		return nil, status.WithCause(status.ConnectionFailure, ctx.Err(), "gave up waiting for the ledger")
	}
}

// classify maps a raw SDK error onto the application taxonomy. Version
// conflicts come back as event-service validation codes; chaincode business
// errors carry the contract's message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		return s
	}

	if sdkErr, ok := sdkstatus.FromError(err); ok {
		switch sdkErr.Group {
		case sdkstatus.EventServerStatus:
			code := pb.TxValidationCode(sdkErr.Code)
			if code == pb.TxValidationCode_MVCC_READ_CONFLICT || code == pb.TxValidationCode_PHANTOM_READ_CONFLICT {
				return status.WithCause(status.MVCCConflict, err, "commit rejected by concurrent write")
			}
			return status.WithCause(status.TransactionFailure, err, "transaction invalidated: "+code.String())
		case sdkstatus.GRPCTransportStatus, sdkstatus.OrdererClientStatus, sdkstatus.DiscoveryServerStatus:
			return status.WithCause(status.ConnectionFailure, err, "transport failure")
		}
	}

	if isNotFoundMessage(err.Error()) {
		return status.WithCause(status.CampaignNotFound, err, "campaign not found")
	}
	return status.WithCause(status.TransactionFailure, err, "transaction failed")
}

// isNotFoundMessage matches the contract's absence error. The contract
// reports a missing campaign with an explicit error, never an empty payload,
// so this is the only shape to match.
func isNotFoundMessage(msg string) bool {
	return strings.Contains(msg, "does not exist")
}
