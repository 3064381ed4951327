package economy

import (
	xerrors "Hedera-Agent-Economy/internal/errors"
)

const (
	CodeTaskValidation xerrors.Code = "TASK_VALIDATION_FAILED"
	CodeLedgerConflict xerrors.Code = "LEDGER_TX_CONFLICT"
	CodeSeedInvalid    xerrors.Code = "SEED_DATA_INVALID"
)

var (
	// ErrBudgetInvalid 表示任务预算不是非负的有限数值。
	ErrBudgetInvalid = xerrors.New(CodeTaskValidation, "budget must be a non-negative finite number")
	// ErrTaskTypeMissing 表示提交请求缺少任务类型。
	ErrTaskTypeMissing = xerrors.New(CodeTaskValidation, "task type is required")
	// ErrLedgerConflict 表示交易引用编号与既有流水冲突。
	ErrLedgerConflict = xerrors.New(CodeLedgerConflict, "transaction reference already recorded", xerrors.WithSeverity(xerrors.SeverityCritical))
)

func init() {
	xerrors.Register(CodeTaskValidation, xerrors.Attributes{
		Message:   "task validation failed",
		Severity:  xerrors.SeverityInfo,
		Retryable: false,
		Alert:     false,
	})
	xerrors.Register(CodeLedgerConflict, xerrors.Attributes{
		Message:   "transaction reference conflict",
		Severity:  xerrors.SeverityCritical,
		Retryable: false,
		Alert:     true,
	})
	xerrors.Register(CodeSeedInvalid, xerrors.Attributes{
		Message:   "seed data invalid",
		Severity:  xerrors.SeverityWarning,
		Retryable: false,
		Alert:     false,
	})
}
