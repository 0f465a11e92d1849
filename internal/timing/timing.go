// Package timing provides lightweight stage timing for the detection
// pipeline.
package timing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StageClock records the duration of named processing stages. It is not safe
// for concurrent use; each pipeline run owns its own clock.
type StageClock struct {
	start  time.Time
	last   time.Time
	stages []Stage
}

// Stage is one recorded stage duration.
type Stage struct {
	Name     string
	Duration time.Duration
}

// NewStageClock starts a new clock.
func NewStageClock() *StageClock {
	now := time.Now()
	return &StageClock{start: now, last: now}
}

// Mark records the time elapsed since the previous mark under the given
// stage name.
func (c *StageClock) Mark(name string) time.Duration {
	now := time.Now()
	d := now.Sub(c.last)
	c.last = now
	c.stages = append(c.stages, Stage{Name: name, Duration: d})
	return d
}

// Total returns the time elapsed since the clock started.
func (c *StageClock) Total() time.Duration {
	return time.Since(c.start)
}

// Milliseconds returns all recorded stages as a name to millisecond map.
func (c *StageClock) Milliseconds() map[string]int64 {
	if len(c.stages) == 0 {
		return nil
	}
	out := make(map[string]int64, len(c.stages))
	for _, s := range c.stages {
		out[s.Name] += s.Duration.Milliseconds()
	}
	return out
}

// String renders the recorded stages in order, for log output.
func (c *StageClock) String() string {
	parts := make([]string, len(c.stages))
	for i, s := range c.stages {
		parts[i] = fmt.Sprintf("%s=%v", s.Name, s.Duration)
	}
	return strings.Join(parts, " ")
}

// SortedStageNames returns the recorded stage names in alphabetical order.
func (c *StageClock) SortedStageNames() []string {
	names := make([]string, 0, len(c.stages))
	seen := make(map[string]bool, len(c.stages))
	for _, s := range c.stages {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names
}
