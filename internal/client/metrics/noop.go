package metrics

import "time"

// Noop discards everything. Used when metrics are disabled.
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) RecordLogin(string, bool, time.Duration) {}
func (Noop) RecordLogout()                           {}
func (Noop) RecordTokenExchange(bool, time.Duration) {}
func (Noop) RecordFetch(int, time.Duration)          {}
