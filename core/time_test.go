// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruvk/core"
)

func TestTime(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{FramesPerSecond: 1000})
	defer tm.Stop()
	c.Assert(tm.Fps(), qt.Equals, 1000)
	c.Assert(tm.AverageFrame(), qt.Equals, time.Duration(0))

	var total time.Duration
	for i := 0; i < 3; i++ {
		<-tm.FpsTicker().C
		d := tm.Frame()
		c.Assert(d > 0, qt.IsTrue)
		total += d
	}
	c.Assert(tm.Frames(), qt.Equals, uint64(3))
	c.Assert(tm.AverageFrame(), qt.Equals, total/3)
}

func TestTimeUnlimited(t *testing.T) {
	c := qt.New(t)

	tm := core.NewTime(core.TimeConfiguration{})
	defer tm.Stop()
	c.Assert(tm.Fps(), qt.Equals, 0)
	select {
	case <-tm.FpsTicker().C:
	case <-time.After(time.Second):
		c.Fatal("ticker did not fire")
	}
}
