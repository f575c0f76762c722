package engine

import (
	"errors"
	"fmt"
)

// RejectCode classifies a registration-time rejection so callers can
// react to the specific rule that failed.
type RejectCode string

const (
	RejectPlayerNotFound   RejectCode = "PLAYER_NOT_FOUND"
	RejectTargetNotFound   RejectCode = "TARGET_NOT_FOUND"
	RejectActorDead        RejectCode = "ACTOR_DEAD"
	RejectUnknownKind      RejectCode = "UNKNOWN_KIND"
	RejectNotAuthorized    RejectCode = "NOT_AUTHORIZED"
	RejectConsecutiveGuard RejectCode = "CONSECUTIVE_GUARD"
)

// Reject is an expected domain rejection: the submission was legal Go
// but illegal by game rules. It is returned, never panicked.
type Reject struct {
	Code    RejectCode
	Message string
}

func (r *Reject) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func reject(code RejectCode, message string) *Reject {
	return &Reject{Code: code, Message: message}
}

// RejectCodeOf extracts the rejection code from err, or "" when err is
// not a rejection.
func RejectCodeOf(err error) RejectCode {
	var r *Reject
	if errors.As(err, &r) {
		return r.Code
	}
	return ""
}

// ContractError signals a construction-contract violation: the caller
// built an action from malformed inputs. Unlike Reject it indicates a
// programming error on the submitting side.
type ContractError struct {
	Field  string
	Detail string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("action contract: %s %s", e.Field, e.Detail)
}

// Terminal-state transition errors for the Action state machine.
var (
	ErrAlreadyExecuted  = errors.New("action already executed")
	ErrCancelled        = errors.New("action cancelled")
	ErrAlreadyCancelled = errors.New("action already cancelled")
	ErrNoGame           = errors.New("no game attached to action")
)
