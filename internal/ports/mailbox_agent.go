package ports

// MailboxAgent is a long-running component feeding messages to the staffing service
type MailboxAgent interface {
	// Start starts the agent. It returns once the agent runs in the
	// background, or after the single pass when configured to run once.
	Start() error

	// Stop stops the agent and waits for in-flight work
	Stop() error
}
