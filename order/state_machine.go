package order

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition 非法状态转换。
var ErrIllegalTransition = errors.New("illegal state transition")

// StateTransition 状态转换
type StateTransition struct {
	From Status
	To   Status
}

// StateMachine 订单状态机。引擎单线程驱动，无需加锁。
type StateMachine struct {
	transitions map[StateTransition]bool
}

// NewStateMachine 创建新的状态机
func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[StateTransition]bool)}
	legal := []StateTransition{
		{StatusPendingLive, StatusLive},
		{StatusPendingLive, StatusCancelling},
		{StatusPendingLive, StatusFilled},
		{StatusPendingLive, StatusCanceled},
		{StatusPendingLive, StatusRejected},

		{StatusLive, StatusCancelling},
		{StatusLive, StatusFilled},
		{StatusLive, StatusCanceled},
		{StatusLive, StatusRejected},

		// 撤单途中仍可能成交
		{StatusCancelling, StatusFilled},
		{StatusCancelling, StatusCanceled},
		{StatusCancelling, StatusRejected},
	}
	for _, t := range legal {
		sm.transitions[t] = true
	}
	return sm
}

// ValidateTransition 验证状态转换是否合法，相同状态视为幂等。
func (sm *StateMachine) ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if !sm.transitions[StateTransition{From: from, To: to}] {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// IsFinalState 判断是否是终态
func (sm *StateMachine) IsFinalState(status Status) bool {
	switch status {
	case StatusFilled, StatusCanceled, StatusRejected:
		return true
	default:
		return false
	}
}

// CanCancel 判断当前状态下是否可以撤单
func (sm *StateMachine) CanCancel(status Status) bool {
	return status == StatusPendingLive || status == StatusLive
}
