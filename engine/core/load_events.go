package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// LoadEventLog accumulates human readable progress messages produced by the
// loading goroutine. The main thread polls Text to repaint its loading screen.
type LoadEventLog struct {
	mutex   sync.Mutex
	buffer  strings.Builder
	started []time.Time
	version uint64
}

func NewLoadEventLog() *LoadEventLog {
	return &LoadEventLog{}
}

// Push opens a timed event and appends its description.
func (l *LoadEventLog) Push(format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.buffer.WriteString(fmt.Sprintf(format, args...))
	l.buffer.WriteString("... ")
	l.started = append(l.started, time.Now())
	l.version++
}

// Pop closes the most recently pushed event and appends its duration.
func (l *LoadEventLog) Pop() time.Duration {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(l.started) == 0 {
		return 0
	}
	start := l.started[len(l.started)-1]
	l.started = l.started[:len(l.started)-1]
	elapsed := time.Since(start)
	l.buffer.WriteString(fmt.Sprintf("Done in %d ms\n", elapsed.Milliseconds()))
	l.version++
	return elapsed
}

// Text returns the whole buffer and a version that changes on every write.
func (l *LoadEventLog) Text() (string, uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.buffer.String(), l.version
}
