// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"

	"github.com/loov/hrtime"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	interval := time.Nanosecond
	if cfg.FramesPerSecond > 0 {
		interval = time.Second / time.Duration(cfg.FramesPerSecond)
	}
	return &Time{
		fps:       cfg.FramesPerSecond,
		fpsTicker: time.NewTicker(interval),
		last:      hrtime.Now(),
	}
}

// Time paces the event loop and measures frame durations
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	last   time.Duration
	frames uint64
	total  time.Duration
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// Frame marks the end of a frame and returns its duration
func (t *Time) Frame() time.Duration {
	now := hrtime.Now()
	elapsed := now - t.last
	t.last = now
	t.frames++
	t.total += elapsed
	return elapsed
}

// Frames returns the number of frames marked so far
func (t *Time) Frames() uint64 {
	return t.frames
}

// AverageFrame returns the mean frame duration
func (t *Time) AverageFrame() time.Duration {
	if t.frames == 0 {
		return 0
	}
	return t.total / time.Duration(t.frames)
}

// Stop stops the tickers
func (t *Time) Stop() {
	t.fpsTicker.Stop()
}
