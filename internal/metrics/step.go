package metrics

import "time"

// Step results used as the Result dimension.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultTimeout   = "timeout"
	ResultSimulated = "simulated"
)

// RecordStep emits latency and outcome for one workflow step
// (quiz, persist, video, export).
func RecordStep(step, result string, elapsed time.Duration) {
	New(Namespace).
		Dimension("Step", step).
		Dimension("Result", result).
		Metric("StepLatencyMs", float64(elapsed.Milliseconds()), UnitMilliseconds).
		Count("StepResult").
		Flush()
}
