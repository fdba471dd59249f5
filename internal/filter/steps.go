package filter

// Option is one answer of a step and the canonical tag it filters on.
type Option struct {
	Label string
	Tag   string
}

// Step is one question of the questionnaire. Key names the video tag list
// the answer is matched against.
type Step struct {
	Key     string
	Prompt  string
	Options []Option
}

// Option returns the option with the given label.
func (s Step) Option(label string) (Option, bool) {
	for _, o := range s.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// Labels lists the option labels in display order.
func (s Step) Labels() []string {
	out := make([]string, len(s.Options))
	for i, o := range s.Options {
		out[i] = o.Label
	}
	return out
}

const (
	Greeting = "Hi. Let’s pick the best moves for your scene."
	Finished = "Done. Pick a move from the results and watch it fullscreen."
)

var Steps = []Step{
	{
		Key:    "env",
		Prompt: "Where are you flying?",
		Options: []Option{
			{"Open area", "open"},
			{"City / Urban", "urban"},
			{"Forest", "forest"},
			{"Near objects", "near_objects"},
			{"Tight space", "tight_space"},
		},
	},
	{
		Key:    "risk",
		Prompt: "How safe does it feel here?",
		Options: []Option{
			{"Safe & calm", "calm"},
			{"Some risks", "some_risks"},
			{"No aggressive moves", "no_aggressive"},
		},
	},
	{
		Key:    "subject",
		Prompt: "What are you filming?",
		Options: []Option{
			{"Person", "person"},
			{"Car / Bike", "car"},
			{"Building", "building"},
			{"Landscape", "landscape"},
			{"Atmosphere", "atmosphere"},
		},
	},
	{
		Key:    "pilot",
		Prompt: "How confident are you right now?",
		Options: []Option{
			{"Playing safe", "safe"},
			{"Normal", "normal"},
			{"Ready to experiment", "experiment"},
		},
	},
	{
		Key:    "mood",
		Prompt: "What vibe do you want?",
		Options: []Option{
			{"Smooth", "smooth"},
			{"Epic", "epic"},
			{"Dynamic", "dynamic"},
			{"Tense", "tense"},
			{"Wow", "wow"},
		},
	},
}

func stepByKey(key string) (Step, bool) {
	for _, s := range Steps {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}
