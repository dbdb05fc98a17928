package display

import (
	"errors"
	"log/slog"
	"time"

	"github.com/matthewar/snekframe/store"
)

const scheduleInterval = time.Minute

// Scheduler will periodically check the time to decide if we need to turn off or on the display
type Scheduler struct {
	db         *store.Database
	controller *Controller

	lastCheck time.Time
}

func NewScheduler(db *store.Database, controller *Controller) (*Scheduler, error) {
	if db == nil {
		return nil, errors.New("no database provided for scheduler")
	}
	if controller == nil {
		return nil, errors.New("no display controller provided for scheduler")
	}

	return &Scheduler{
		db:         db,
		controller: controller,
	}, nil
}

func (s *Scheduler) checkSchedule() {
	settings, err := s.db.GetSettings()
	if err != nil {
		slog.Error("unable to get settings", "error", err)
		return
	}

	if !settings.SleepEnabled {
		return
	}

	now := time.Now()
	defer func() { s.lastCheck = now }()

	turnOff, turnOn, err := sleepTransition(s.lastCheck, now, settings.SleepStart, settings.SleepEnd)
	if err != nil {
		slog.Warn("sleep window with invalid format", "start", settings.SleepStart, "end", settings.SleepEnd, "error", err)
		return
	}

	// crossed into sleep start - turn off display
	if turnOff {
		if err := s.controller.SetEnabled(false); err != nil {
			slog.Warn("issue while turning off display for sleep", "error", err)
		} else {
			slog.Info("turning display off for sleep", "time", now)
		}
		return
	}

	// crossed into sleep end - turn on display
	if turnOn {
		if err := s.controller.SetEnabled(true); err != nil {
			slog.Warn("issue while turning on display after sleep", "error", err)
		} else {
			slog.Info("turning display on after sleep", "time", now)
		}
		return
	}
}

// sleepTransition reports whether the window boundaries were crossed between
// the two check times. Each boundary recurs daily on its own, which keeps
// windows spanning midnight working. If both were crossed, the later one
// wins.
func sleepTransition(lastCheck, now time.Time, start, end string) (turnOff, turnOn bool, err error) {
	startDate, err := todayAt(now, start)
	if err != nil {
		return false, false, err
	}

	endDate, err := todayAt(now, end)
	if err != nil {
		return false, false, err
	}

	turnOff = lastCheck.Before(startDate) && now.After(startDate)
	turnOn = lastCheck.Before(endDate) && now.After(endDate)
	if turnOff && turnOn {
		if startDate.After(endDate) {
			turnOn = false
		} else {
			turnOff = false
		}
	}
	return turnOff, turnOn, nil
}

func todayAt(now time.Time, value string) (time.Time, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}

func (s *Scheduler) Run() {
	ticker := time.NewTicker(scheduleInterval)

	s.checkSchedule()

	for range ticker.C {
		s.checkSchedule()
	}
}
