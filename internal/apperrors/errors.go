package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// The mirror store returns it when a donation's transaction hash is already recorded.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a compare-and-set lost against a concurrent writer.
var ErrConflict = errors.New("resource was modified concurrently")

// Sentinels for the remaining kinds. AppError values match them through errors.Is.
var (
	ErrStateConflict       = errors.New("illegal campaign state for operation")
	ErrLedgerRejected      = errors.New("ledger rejected the operation")
	ErrLedgerIndeterminate = errors.New("ledger outcome is indeterminate")
	ErrLedgerFatal         = errors.New("ledger is misconfigured or refused authentication")
	ErrContention          = errors.New("campaign roll-up lost too many races")
	ErrDuplicateEffect     = errors.New("ledger effect already recorded")
	ErrInconsistency       = errors.New("ledger and mirror are inconsistent")
	ErrInternal            = errors.New("internal error")
)

// Kind discriminates failures surfaced by the reconciliation core.
type Kind string

const (
	KindValidation          Kind = "VALIDATION"
	KindNotFound            Kind = "NOT_FOUND"
	KindStateConflict       Kind = "STATE_CONFLICT"
	KindLedgerRejected      Kind = "LEDGER_REJECTED"
	KindLedgerIndeterminate Kind = "LEDGER_INDETERMINATE"
	KindLedgerFatal         Kind = "LEDGER_FATAL"
	KindMirrorConflict      Kind = "MIRROR_CONFLICT"
	KindContention          Kind = "CONTENTION"
	KindDuplicateEffect     Kind = "DUPLICATE_EFFECT"
	KindInconsistency       Kind = "INTERNAL_INCONSISTENCY"
	KindInternal            Kind = "INTERNAL"
)

var kindSentinels = map[Kind]error{
	KindValidation:          ErrValidation,
	KindNotFound:            ErrNotFound,
	KindStateConflict:       ErrStateConflict,
	KindLedgerRejected:      ErrLedgerRejected,
	KindLedgerIndeterminate: ErrLedgerIndeterminate,
	KindLedgerFatal:         ErrLedgerFatal,
	KindMirrorConflict:      ErrConflict,
	KindContention:          ErrContention,
	KindDuplicateEffect:     ErrDuplicateEffect,
	KindInconsistency:       ErrInconsistency,
	KindInternal:            ErrInternal,
}

// AppError is the error type returned by services. Besides the kind it carries the
// identifiers an operator needs to reconcile the ledger and the mirror by hand.
type AppError struct {
	Kind            Kind
	Message         string
	Operation       string
	CampaignID      string
	TransactionHash string
	ContractAddress string
	Err             error
}

// NewAppError creates an AppError of the given kind.
func NewAppError(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Operation != "" {
		b.WriteString(" [")
		b.WriteString(e.Operation)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.CampaignID != "" {
		fmt.Fprintf(&b, " (campaign=%s)", e.CampaignID)
	}
	if e.TransactionHash != "" {
		fmt.Fprintf(&b, " (tx=%s)", e.TransactionHash)
	}
	if e.ContractAddress != "" {
		fmt.Fprintf(&b, " (contract=%s)", e.ContractAddress)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := kindSentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// WithOperation sets the operation name and returns the error for chaining.
func (e *AppError) WithOperation(op string) *AppError {
	e.Operation = op
	return e
}

// WithCampaign sets the campaign identifier.
func (e *AppError) WithCampaign(campaignID string) *AppError {
	e.CampaignID = campaignID
	return e
}

// WithTransaction sets the ledger transaction hash.
func (e *AppError) WithTransaction(txHash string) *AppError {
	e.TransactionHash = txHash
	return e
}

// WithContract sets the ledger contract address.
func (e *AppError) WithContract(address string) *AppError {
	e.ContractAddress = address
	return e
}

// Validation is shorthand for a KindValidation AppError.
func Validation(format string, args ...any) *AppError {
	return NewAppError(KindValidation, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the kind of err. Plain sentinels map to their kind; anything else is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// IsLedgerKind reports whether the kind originated at the ledger.
func IsLedgerKind(k Kind) bool {
	return k == KindLedgerRejected || k == KindLedgerIndeterminate || k == KindLedgerFatal
}
