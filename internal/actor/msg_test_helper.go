package actor

// testMsg is a minimal Message implementation shared by unit tests in this
// package that don't care about payload shape, just that a message flows
// through the mailbox/router/receptionist plumbing.
type testMsg struct {
	BaseMessage

	payload string
}

// MessageType implements Message.
func (m *testMsg) MessageType() string {
	return "test.testMsg"
}

// newTestMsg builds a testMsg carrying the given payload.
func newTestMsg(payload string) *testMsg {
	return &testMsg{payload: payload}
}

var _ Message = (*testMsg)(nil)
