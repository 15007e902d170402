package catalogcmd

type (
	// Sent to update the total source count.
	EventSetTotal int

	// Sent when work on a source has started.
	EventStarted string

	// Sent to route a log line to subscribers.
	EventLog string

	// Sent when work on a source has finished, or when a fatal error occurs
	// mid-source.
	EventCompleted struct {
		Err  error
		Name string
	}

	// Sent when all work has completed.
	EventDone struct {
		Err error
	}
)
