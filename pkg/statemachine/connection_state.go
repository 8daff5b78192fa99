package statemachine

// ConnState is the connectivity state of a sync session.
type ConnState string

const (
	ConnInitializing ConnState = "INITIALIZING"
	ConnConnected    ConnState = "CONNECTED"
	ConnDisconnected ConnState = "DISCONNECTED"
)

// NewConnStateMachine 创建连接状态机
// Initializing 只会离开一次，之后在 Connected 与 Disconnected 之间切换
func NewConnStateMachine() *StateMachine[ConnState] {
	sm := NewWithState(ConnInitializing)

	sm.Allow(ConnInitializing, ConnConnected, ConnDisconnected).
		Allow(ConnConnected, ConnDisconnected).
		Allow(ConnDisconnected, ConnConnected)

	return sm
}
