package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Sample is one accelerometer reading in g.
type Sample struct {
	Accel mgl64.Vec3
}

func NewSample(x, y, z float64) Sample {
	return Sample{Accel: mgl64.Vec3{x, y, z}}
}

// Valid reports whether every axis is a finite number. Invalid samples are
// treated as no motion.
func (s Sample) Valid() bool {
	for _, c := range s.Accel {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Intensity is the acceleration above 1g, normalized to [0,1].
func (s Sample) Intensity() float64 {
	if !s.Valid() {
		return 0
	}
	return lo.Clamp(s.Accel.Len()-1, 0, 2) / 2
}

// Below reports whether the vertical axis reads under threshold, i.e. the
// screen faces up far enough.
func (s Sample) Below(threshold float64) bool {
	return s.Valid() && s.Accel.Z() < threshold
}

// ScaleIntensity maps raw from [floor,ceil] onto [0,1].
func ScaleIntensity(raw, floor, ceil float64) float64 {
	if ceil <= floor || math.IsNaN(raw) {
		return 0
	}
	return lo.Clamp((raw-floor)/(ceil-floor), 0, 1)
}

// HitKind classifies an accepted return.
type HitKind uint8

const (
	HitNormal HitKind = iota
	HitSmash
)

func (k HitKind) String() string {
	if k == HitSmash {
		return "smash"
	}
	return "normal"
}

// Classify decides between a smash and a normal hit for a ball at proximity
// struck with the given scaled intensity.
func Classify(proximity, scaled float64, t Tuning) HitKind {
	if proximity >= t.SmashProximity && scaled >= t.SmashIntensity {
		return HitSmash
	}
	return HitNormal
}
