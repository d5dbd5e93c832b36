package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func parseSchedule(expr string) (cron.Schedule, error) {
	sched, err := scheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid rotation schedule %q: %w", expr, err)
	}
	return sched, nil
}

// NextRotation returns the first scheduled rotation after now. expr is a
// five field cron expression or a descriptor such as "@daily".
func NextRotation(expr string, now time.Time) (time.Time, error) {
	sched, err := parseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// rotationSchedule calls fn at every scheduled time until stopped.
type rotationSchedule struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func startRotationSchedule(expr string, now func() time.Time, fn func()) (*rotationSchedule, error) {
	sched, err := parseSchedule(expr)
	if err != nil {
		return nil, err
	}

	rs := &rotationSchedule{stop: make(chan struct{})}
	go rs.run(sched, now, fn)
	return rs, nil
}

func (rs *rotationSchedule) run(sched cron.Schedule, now func() time.Time, fn func()) {
	for {
		current := now()
		timer := time.NewTimer(sched.Next(current).Sub(current))
		select {
		case <-timer.C:
			fn()
		case <-rs.stop:
			timer.Stop()
			return
		}
	}
}

// Stop ends the schedule. It does not wait for a running fn.
func (rs *rotationSchedule) Stop() {
	rs.stopOnce.Do(func() {
		close(rs.stop)
	})
}
