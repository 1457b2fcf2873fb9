package progress

// ProgressUpdate is a progress report for one integrator in a run.
type ProgressUpdate struct {
	// CalculatorIndex identifies the integrator within the run.
	CalculatorIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// ProgressCallback receives the completed fraction of a single run.
type ProgressCallback func(progress float64)

// ChannelCallback returns a callback that forwards updates for index onto ch.
// Sends never block: when the channel buffer is full the update is dropped,
// except the final 1.0 update which is always delivered.
func ChannelCallback(ch chan<- ProgressUpdate, index int) ProgressCallback {
	if ch == nil {
		return func(float64) {}
	}
	return func(v float64) {
		u := ProgressUpdate{CalculatorIndex: index, Value: v}
		if v >= 1.0 {
			ch <- u
			return
		}
		select {
		case ch <- u:
		default:
		}
	}
}
