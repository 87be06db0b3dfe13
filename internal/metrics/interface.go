package metrics

// Metrics defines the instrumentation points the engine reports to.
type Metrics interface {
	IncSessionLoads()
	IncSessionLoadFailures()
	IncAction(action, outcome string)
	ObserveActionDuration(action string, seconds float64)
	SetStartupTime(seconds float64)
}

// Outcome labels for IncAction.
const (
	OutcomeSuccess      = "success"
	OutcomePrecondition = "precondition"
	OutcomeRejected     = "rejected"
	OutcomeTimeout      = "timeout"
	OutcomeError        = "error"
)
