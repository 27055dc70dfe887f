// Package diagnostics is a passive, append-only diagnostic sink shared by the
// codec and program packages. It never drives control flow: every match
// failure, parse failure, or label error described in SPEC_FULL.md is data
// returned to the caller through ordinary return values, and is only
// additionally recorded here when a caller opts in by attaching a sink.
package diagnostics

import (
	"fmt"
	"sync"
)

// Severity classifies a recorded entry.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityTrace   Severity = "trace"
)

// Entry is a single diagnostic event: what happened, in which phase, and how
// severe it is. Entries are immutable once recorded.
type Entry struct {
	Severity Severity
	Phase    string // "parse", "encode", "decode", "sizing", "labels", "arith"
	Message  string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s [%s] %s", e.Severity, e.Phase, e.Message)
}

// Sink accumulates entries in insertion order. It is safe for concurrent use
// so that a single sink can back several Codec/Assembler instances running on
// different goroutines. The zero value is ready to use; a nil *Sink receiver
// on every recording method is also safe and simply discards the entry, so
// every producer in this module can unconditionally call
// sink.Error/Warning/Info/Trace without a nil check at each call site.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewSink returns an empty, ready-to-use Sink.
func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) record(severity Severity, phase, message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Severity: severity, Phase: phase, Message: message})
}

// Error records a SeverityError entry.
func (s *Sink) Error(phase, message string) { s.record(SeverityError, phase, message) }

// Warning records a SeverityWarning entry.
func (s *Sink) Warning(phase, message string) { s.record(SeverityWarning, phase, message) }

// Info records a SeverityInfo entry.
func (s *Sink) Info(phase, message string) { s.record(SeverityInfo, phase, message) }

// Trace records a SeverityTrace entry.
func (s *Sink) Trace(phase, message string) { s.record(SeverityTrace, phase, message) }

// Entries returns a copy of all recorded entries in insertion order.
func (s *Sink) Entries() []Entry {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// HasErrors reports whether at least one SeverityError entry was recorded.
func (s *Sink) HasErrors() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the total number of recorded entries.
func (s *Sink) Count() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
