// Package battery watches battery charge and raises desktop
// notifications when it crosses the configured thresholds. Hysteresis
// keeps a reading that hovers around a threshold from re-alerting on
// every tick.
package battery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"outputd/internal/notify"
)

type (
	// Reading is one sample of the power supply state. Only the
	// previous reading's level is retained between ticks.
	Reading struct {
		Percent       int
		Charging      bool
		TimeRemaining time.Duration
		At            time.Time
	}

	// Source produces battery readings on demand.
	Source interface {
		Read(ctx context.Context) (Reading, error)
	}

	Level int
)

const (
	LevelNormal Level = iota
	LevelLow
	LevelCritical
	LevelCharging
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelCritical:
		return "critical"
	case LevelCharging:
		return "charging"
	default:
		return "normal"
	}
}

// severityRank orders levels for deciding whether a transition is a
// downward crossing. Charging counts as normal: alerts only make sense
// while discharging.
func severityRank(l Level) int {
	switch l {
	case LevelLow:
		return 1
	case LevelCritical:
		return 2
	default:
		return 0
	}
}

type Monitor struct {
	src  Source
	sink notify.Notifier

	low        int
	critical   int
	hysteresis int
	interval   time.Duration

	level        Level
	sinkFailures int
}

func NewMonitor(src Source, sink notify.Notifier, low, critical, hysteresis int, interval time.Duration) *Monitor {
	return &Monitor{
		src:        src,
		sink:       sink,
		low:        low,
		critical:   critical,
		hysteresis: hysteresis,
		interval:   interval,
		level:      LevelNormal,
	}
}

// Run polls the source until the context is cancelled. Read or sink
// failures are logged and the loop keeps going; there is no natural
// terminal state.
func (m *Monitor) Run(ctx context.Context) error {
	slog.Info("battery monitor started",
		"low_threshold", m.low, "critical_threshold", m.critical,
		"hysteresis", m.hysteresis, "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-ctx.Done():
			slog.Info("battery monitor stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	r, err := m.src.Read(ctx)
	if err != nil {
		slog.Error("reading battery state", "error", err)
		return
	}

	m.Step(ctx, r)
}

// Step feeds one reading through the state machine. Exported so tests
// can drive the machine with a scripted sequence instead of a ticker.
func (m *Monitor) Step(ctx context.Context, r Reading) {
	next := nextLevel(m.level, r, m.low, m.critical, m.hysteresis)
	if next == m.level {
		return
	}

	prev := m.level
	m.level = next
	slog.Info("battery level transition",
		"from", prev.String(), "to", next.String(),
		"percent", r.Percent, "charging", r.Charging)

	// Notifications fire only on downward crossings; the climb back up
	// stays quiet so a boundary-hovering battery doesn't spam.
	if severityRank(next) <= severityRank(prev) {
		return
	}

	sev := notify.SeverityWarning
	if next == LevelCritical {
		sev = notify.SeverityError
	}

	title := fmt.Sprintf("Battery %s", next)
	body := fmt.Sprintf("%d%% remaining", r.Percent)
	if r.TimeRemaining > 0 {
		body = fmt.Sprintf("%s (about %s left)", body, r.TimeRemaining.Round(time.Minute))
	}

	if err := m.sink.Notify(ctx, sev, title, body); err != nil {
		m.sinkFailures++
		slog.Warn("notification sink unavailable",
			"consecutive_failures", m.sinkFailures, "severity", sev, "title", title, "body", body, "error", err)
		return
	}
	m.sinkFailures = 0
}

// Level returns the machine's current level; used by tests.
func (m *Monitor) Level() Level {
	return m.level
}

// nextLevel computes the level a reading lands on. Downward crossings
// jump straight to the matching level (a reading of 8% from normal goes
// directly to critical, one alert). Upward moves require the hysteresis
// margin above the threshold that triggered the transition.
func nextLevel(cur Level, r Reading, low, critical, hysteresis int) Level {
	if r.Charging {
		return LevelCharging
	}
	if cur == LevelCharging {
		cur = LevelNormal
	}

	switch {
	case r.Percent <= critical:
		return LevelCritical

	case r.Percent <= low:
		if cur == LevelCritical && r.Percent <= critical+hysteresis {
			return LevelCritical
		}
		return LevelLow

	default:
		switch cur {
		case LevelCritical:
			if r.Percent <= critical+hysteresis {
				return LevelCritical
			}
			if r.Percent <= low+hysteresis {
				return LevelLow
			}
			return LevelNormal
		case LevelLow:
			if r.Percent <= low+hysteresis {
				return LevelLow
			}
			return LevelNormal
		default:
			return LevelNormal
		}
	}
}
