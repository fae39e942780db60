package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"airpong/game"
)

// tuningKey binds one dotted TOML key to a Tuning field. Exactly one of the
// pointers is set.
type tuningKey struct {
	key string
	n   *int
	d   *time.Duration
	f   *float64
}

func tuningKeys(t *game.Tuning) []tuningKey {
	return []tuningKey{
		{key: "match.winning_score", n: &t.WinningScore},

		{key: "timing.toss_tick", d: &t.TossTickInterval},
		{key: "timing.rally_tick", d: &t.RallyTickInterval},
		{key: "timing.sample_interval", d: &t.SampleInterval},
		{key: "timing.min_time_between_hits", d: &t.MinTimeBetweenHits},
		{key: "timing.point_scored_delay", d: &t.PointScoredDelay},
		{key: "timing.game_over_cooldown", d: &t.GameOverCooldown},

		{key: "serve.gravity", f: &t.Gravity},
		{key: "serve.toss_gain", f: &t.TossGain},
		{key: "serve.min_ball_height", f: &t.MinServeBallHeight},
		{key: "serve.orientation_z", f: &t.ServeOrientationZ},
		{key: "serve.oriented_z", f: &t.OrientedForServeZ},
		{key: "serve.min_intensity", f: &t.MinServeIntensity},

		{key: "hit.min_intensity", f: &t.MinHitIntensity},
		{key: "hit.max_intensity", f: &t.MaxHitIntensity},
		{key: "hit.smash_proximity", f: &t.SmashProximity},
		{key: "hit.smash_intensity", f: &t.SmashIntensity},
		{key: "hit.smash_feedback_gain", f: &t.SmashFeedbackGain},

		{key: "ball.base_speed", f: &t.BaseBallSpeed},
		{key: "ball.normal_base_speed", f: &t.NormalBaseSpeed},
		{key: "ball.normal_speed_gain", f: &t.NormalSpeedGain},
		{key: "ball.smash_base_speed", f: &t.SmashBaseSpeed},
		{key: "ball.smash_speed_gain", f: &t.SmashSpeedGain},
		{key: "ball.acceleration", f: &t.RallyAcceleration},

		{key: "bounce.damping", f: &t.BounceDamping},
		{key: "bounce.min", f: &t.BounceMin},
		{key: "bounce.max", f: &t.BounceMax},
	}
}

// LoadTuning reads path over the defaults. Keys absent from the file keep
// their default value.
func LoadTuning(path string) (game.Tuning, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return game.Tuning{}, fmt.Errorf("load tuning %s: %w", path, err)
	}
	return tuningFromTree(tree)
}

// LoadOrCreateTuning is LoadTuning, except that a missing file is written
// with the defaults. created reports whether that happened.
func LoadOrCreateTuning(path string) (t game.Tuning, created bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := SaveDefaultTuning(path); err != nil {
			return game.Tuning{}, false, err
		}
		return game.DefaultTuning(), true, nil
	}
	t, err = LoadTuning(path)
	return t, false, err
}

func tuningFromTree(tree *toml.Tree) (game.Tuning, error) {
	t := game.DefaultTuning()
	for _, k := range tuningKeys(&t) {
		if !tree.Has(k.key) {
			continue
		}
		v := tree.Get(k.key)
		switch {
		case k.n != nil:
			n, ok := v.(int64)
			if !ok {
				return game.Tuning{}, fmt.Errorf("tuning %s: want integer, got %T", k.key, v)
			}
			*k.n = int(n)
		case k.d != nil:
			s, ok := v.(string)
			if !ok {
				return game.Tuning{}, fmt.Errorf("tuning %s: want duration string, got %T", k.key, v)
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return game.Tuning{}, fmt.Errorf("tuning %s: %w", k.key, err)
			}
			*k.d = d
		case k.f != nil:
			switch x := v.(type) {
			case float64:
				*k.f = x
			case int64:
				*k.f = float64(x)
			default:
				return game.Tuning{}, fmt.Errorf("tuning %s: want number, got %T", k.key, v)
			}
		}
	}
	if err := t.Validate(); err != nil {
		return game.Tuning{}, err
	}
	return t, nil
}

// SaveDefaultTuning writes the default tuning to path.
func SaveDefaultTuning(path string) error {
	s, err := EncodeTuning(game.DefaultTuning())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("write tuning %s: %w", path, err)
	}
	return nil
}

// EncodeTuning renders t as TOML, grouped by section.
func EncodeTuning(t game.Tuning) (string, error) {
	sections := make(map[string]interface{})
	for _, k := range tuningKeys(&t) {
		section, name, _ := strings.Cut(k.key, ".")
		m, ok := sections[section].(map[string]interface{})
		if !ok {
			m = make(map[string]interface{})
			sections[section] = m
		}
		switch {
		case k.n != nil:
			m[name] = int64(*k.n)
		case k.d != nil:
			m[name] = k.d.String()
		case k.f != nil:
			m[name] = *k.f
		}
	}
	tree, err := toml.TreeFromMap(sections)
	if err != nil {
		return "", fmt.Errorf("encode tuning: %w", err)
	}
	return tree.ToTomlString()
}

