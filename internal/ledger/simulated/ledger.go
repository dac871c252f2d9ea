// Package simulated is a deterministic in-process ledger for development and tests. It keeps
// the contract rules a campaign contract enforces: deadlines, the target, withdraw-once.
package simulated

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/fundraising_app/internal/apperrors"
	"github.com/SscSPs/fundraising_app/internal/core/domain"
	"github.com/SscSPs/fundraising_app/internal/utils"
	"github.com/shopspring/decimal"
)

type contract struct {
	address   string
	creator   string
	target    decimal.Decimal
	endDate   int64
	raised    decimal.Decimal
	withdrawn bool
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	now       func() time.Time
	latency   time.Duration
	nonce     uint64
	contracts map[string]*contract
	receipts  map[string]domain.Receipt // by idempotency key
	faults    map[string][]Fault        // by operation name
}

// Fault is a one-shot failure injected into the next call of an operation.
type Fault struct {
	Kind apperrors.Kind
	// Applied makes the ledger apply the effect before failing, like a lost response.
	Applied bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the ledger's time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLatency delays every call, honouring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(l *Ledger) {
		l.latency = d
	}
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		now:       time.Now,
		contracts: make(map[string]*contract),
		receipts:  make(map[string]domain.Receipt),
		faults:    make(map[string][]Fault),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InjectFault queues f for the next call of operation.
func (l *Ledger) InjectFault(operation string, f Fault) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults[operation] = append(l.faults[operation], f)
}

func (l *Ledger) nextFault(operation string) (Fault, bool) {
	queue := l.faults[operation]
	if len(queue) == 0 {
		return Fault{}, false
	}
	l.faults[operation] = queue[1:]
	return queue[0], true
}

// Submit applies op. A repeated idempotency key returns the original receipt.
func (l *Ledger) Submit(ctx context.Context, op domain.LedgerOperation) (*domain.Receipt, error) {
	if l.latency > 0 {
		select {
		case <-time.After(l.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if receipt, ok := l.receipts[op.Key()]; ok && op.Key() != "" {
		return &receipt, nil
	}

	fault, faulted := l.nextFault(op.OperationName())
	if faulted && !fault.Applied {
		return nil, apperrors.NewAppError(fault.Kind, "injected fault", nil).WithOperation(op.OperationName())
	}

	var (
		receipt domain.Receipt
		err     error
	)
	switch o := op.(type) {
	case domain.DeployCampaign:
		receipt, err = l.deploy(o)
	case domain.RecordDonation:
		receipt, err = l.donate(o)
	case domain.Withdraw:
		receipt, err = l.withdraw(o)
	default:
		err = rejected(op.OperationName(), fmt.Sprintf("unsupported operation %T", op))
	}
	if err != nil {
		return nil, err
	}
	if op.Key() != "" {
		l.receipts[op.Key()] = receipt
	}
	if faulted {
		return nil, apperrors.NewAppError(fault.Kind, "injected fault after apply", nil).
			WithOperation(op.OperationName()).
			WithTransaction(receipt.TransactionHash)
	}
	return &receipt, nil
}

// QueryCampaign returns the ledger's view of a deployed contract.
func (l *Ledger) QueryCampaign(_ context.Context, contractAddress string, _ string) (*domain.LedgerCampaignState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.contracts[contractAddress]
	if !ok {
		return nil, rejected("QUERY_CAMPAIGN", "unknown contract "+contractAddress)
	}
	return &domain.LedgerCampaignState{
		ContractAddress: c.address,
		RaisedAmount:    c.raised,
		TargetAmount:    c.target,
		Withdrawn:       c.withdrawn,
	}, nil
}

// Raised returns the amount a contract has received, for assertions.
func (l *Ledger) Raised(contractAddress string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.contracts[contractAddress]; ok {
		return c.raised
	}
	return decimal.Zero
}

func (l *Ledger) deploy(op domain.DeployCampaign) (domain.Receipt, error) {
	now := l.now().Unix()
	if !domain.IsWholePositive(op.TargetAmount) {
		return domain.Receipt{}, rejected(op.OperationName(), "target must be a positive integer")
	}
	if op.EndDate <= now {
		return domain.Receipt{}, rejected(op.OperationName(), "end date must be in the future")
	}

	txHash := l.nextHash("deploy", op.Key())
	address := utils.AddressFromHash(utils.Keccak256([]byte("contract"), []byte(txHash)))
	l.contracts[address] = &contract{
		address: address,
		creator: op.CreatorAddress,
		target:  op.TargetAmount,
		endDate: op.EndDate,
		raised:  decimal.Zero,
	}
	return domain.Receipt{TransactionHash: txHash, ContractAddress: address, BlockTimestamp: now}, nil
}

func (l *Ledger) donate(op domain.RecordDonation) (domain.Receipt, error) {
	c, ok := l.contracts[op.ContractAddress]
	if !ok {
		return domain.Receipt{}, rejected(op.OperationName(), "unknown contract "+op.ContractAddress)
	}
	now := l.now().Unix()
	switch {
	case !domain.IsWholePositive(op.Amount):
		return domain.Receipt{}, rejected(op.OperationName(), "amount must be a positive integer")
	case c.withdrawn:
		return domain.Receipt{}, rejected(op.OperationName(), "campaign already withdrawn")
	case now >= c.endDate:
		return domain.Receipt{}, rejected(op.OperationName(), "campaign has ended")
	}

	c.raised = c.raised.Add(op.Amount)
	txHash := l.nextHash("donate", op.Key())
	return domain.Receipt{TransactionHash: txHash, Amount: op.Amount, BlockTimestamp: now}, nil
}

func (l *Ledger) withdraw(op domain.Withdraw) (domain.Receipt, error) {
	c, ok := l.contracts[op.ContractAddress]
	if !ok {
		return domain.Receipt{}, rejected(op.OperationName(), "unknown contract "+op.ContractAddress)
	}
	switch {
	case c.withdrawn:
		return domain.Receipt{}, rejected(op.OperationName(), "campaign already withdrawn")
	case c.raised.LessThan(c.target):
		return domain.Receipt{}, rejected(op.OperationName(), "campaign target not reached")
	}

	c.withdrawn = true
	txHash := l.nextHash("withdraw", op.Key())
	return domain.Receipt{TransactionHash: txHash, Amount: c.raised, BlockTimestamp: l.now().Unix()}, nil
}

// nextHash derives a unique transaction hash. Callers hold l.mu.
func (l *Ledger) nextHash(kind string, key string) string {
	l.nonce++
	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], l.nonce)
	return utils.HexHash(utils.Keccak256([]byte(kind), []byte(key), nonce[:]))
}

func rejected(operation string, reason string) error {
	return apperrors.NewAppError(apperrors.KindLedgerRejected, reason, nil).WithOperation(operation)
}
