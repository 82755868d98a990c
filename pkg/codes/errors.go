package codes

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// 规则错误码
const (
	CodeInvalidTokenState = 101
	CodeNoEligibleToken   = 102
	CodeReorder           = 103
	CodeDecisionTimeout   = 104
	CodeDecisionCancelled = 105
	CodeBadInput          = 400
)

var (
	ErrInvalidTokenState = errors.New(CodeInvalidTokenState, "INVALID_TOKEN_STATE", "token is not active")
	ErrNoEligibleToken   = errors.New(CodeNoEligibleToken, "NO_ELIGIBLE_TOKEN", "no token can use this throw")
	ErrReorderCount      = errors.New(CodeReorder, "REORDER_COUNT", "reorder must list every throw exactly once")
	ErrReorderValue      = errors.New(CodeReorder, "REORDER_VALUE", "reorder values must be one of -1,1,2,3,4,5")
	ErrReorderNotNumber  = errors.New(CodeReorder, "REORDER_NOT_NUMBER", "reorder input must be comma separated integers")
	ErrReorderMismatch   = errors.New(CodeReorder, "REORDER_MISMATCH", "reorder is not a permutation of the throws")
	ErrDecisionTimeout   = errors.New(CodeDecisionTimeout, "DECISION_TIMEOUT", "decision timed out")
	ErrDecisionCancelled = errors.New(CodeDecisionCancelled, "DECISION_CANCELLED", "decision cancelled")

	ErrUnknownToken      = errors.New(CodeBadInput, "UNKNOWN_TOKEN", "unknown token")
	ErrNotRepresentative = errors.New(CodeBadInput, "NOT_REPRESENTATIVE", "token is carried by another token")
	ErrInvalidStep       = errors.New(CodeBadInput, "INVALID_STEP", "invalid step count")
	ErrUnknownRequest    = errors.New(CodeBadInput, "UNKNOWN_REQUEST", "no pending request with this id")
	ErrInvalidSelection  = errors.New(CodeBadInput, "INVALID_SELECTION", "selection is not one of the candidates")
	ErrGameNotRunning    = errors.New(CodeBadInput, "GAME_NOT_RUNNING", "game is not in progress")
	ErrGameStarted       = errors.New(CodeBadInput, "GAME_STARTED", "game already started")
	ErrInvalidConfig     = errors.New(CodeBadInput, "INVALID_CONFIG", "invalid configuration")
)

// IsReorderValidation 重排输入校验失败
func IsReorderValidation(err error) bool {
	return errors.Code(err) == CodeReorder
}

// IsDecisionAbort 超时或取消
func IsDecisionAbort(err error) bool {
	code := errors.Code(err)
	return code == CodeDecisionTimeout || code == CodeDecisionCancelled
}
