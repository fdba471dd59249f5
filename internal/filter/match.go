package filter

import "github.com/SLASHOO/SkyMotion-Library/internal/catalog"

// Rule is an extra exclusion applied after the per-step tag checks.
type Rule func(picked map[string]string, v catalog.Video) bool

// SafetyRule excludes videos tagged as risky when the pilot wants to play
// safe.
func SafetyRule(picked map[string]string, v catalog.Video) bool {
	return picked["pilot"] == "safe" && v.HasTag("risk", "some_risks")
}

var rules = []Rule{SafetyRule}

// Picked maps recorded answer labels to canonical tags. Answers without a
// known tag are left out and do not constrain the result.
func Picked(answers map[string]string) map[string]string {
	picked := make(map[string]string, len(answers))
	for key, label := range answers {
		step, ok := stepByKey(key)
		if !ok {
			continue
		}
		if opt, ok := step.Option(label); ok && opt.Tag != "" {
			picked[key] = opt.Tag
		}
	}
	return picked
}

// Match reports whether v carries every picked tag and no rule excludes it.
func Match(picked map[string]string, v catalog.Video) bool {
	for key, tag := range picked {
		if !v.HasTag(key, tag) {
			return false
		}
	}
	for _, excluded := range rules {
		if excluded(picked, v) {
			return false
		}
	}
	return true
}

// Apply returns the videos matching answers, in catalog order.
func Apply(videos []catalog.Video, answers map[string]string) []catalog.Video {
	picked := Picked(answers)
	out := make([]catalog.Video, 0, len(videos))
	for _, v := range videos {
		if Match(picked, v) {
			out = append(out, v)
		}
	}
	return out
}
