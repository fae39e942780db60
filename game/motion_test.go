package game

import (
	"math"
	"testing"
	"time"

	"airpong/clock"
)

func TestScaleIntensity(t *testing.T) {
	if got := ScaleIntensity(6.5, 3.0, 10.0); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("ScaleIntensity(6.5, 3, 10) = %f, want 0.5", got)
	}
	if got := ScaleIntensity(1, 3, 10); got != 0 {
		t.Fatalf("below range = %f, want 0", got)
	}
	if got := ScaleIntensity(12, 3, 10); got != 1 {
		t.Fatalf("above range = %f, want 1", got)
	}
	if got := ScaleIntensity(5, 3, 3); got != 0 {
		t.Fatalf("empty range = %f, want 0", got)
	}
}

func TestSampleIntensity(t *testing.T) {
	cases := []struct {
		s    Sample
		want float64
	}{
		{NewSample(0, 0, -1), 0},
		{NewSample(0, 0, -2), 0.5},
		{NewSample(0, 0, -3), 1},
		{NewSample(0, 0, -9), 1},
		{NewSample(0, 0, 0), 0},
		{NewSample(math.Inf(1), 0, 0), 0},
	}
	for _, c := range cases {
		if got := c.s.Intensity(); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Intensity(%v) = %f, want %f", c.s.Accel, got, c.want)
		}
	}
}

func TestSampleValid(t *testing.T) {
	if !NewSample(0.1, -0.2, -1).Valid() {
		t.Fatalf("finite sample reported invalid")
	}
	if NewSample(0, math.NaN(), 0).Valid() {
		t.Fatalf("NaN sample reported valid")
	}
	if NewSample(0, 0, math.NaN()).Below(0) {
		t.Fatalf("NaN sample reported as oriented")
	}
}

func TestThrottleDeliversLatestPerPeriod(t *testing.T) {
	clk := clock.NewVirtual(epoch)
	var got []int
	th := NewThrottle(clk, 16*time.Millisecond, func(v int) { got = append(got, v) })

	th.Push(1)
	th.Push(2)
	th.Push(3)
	clk.Advance(10 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("delivered before period closed: %v", got)
	}
	clk.Advance(6 * time.Millisecond)
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("delivered %v, want [3]", got)
	}

	th.Push(4)
	th.Reset()
	clk.Advance(time.Second)
	if len(got) != 1 {
		t.Fatalf("reset throttle still delivered: %v", got)
	}
}
