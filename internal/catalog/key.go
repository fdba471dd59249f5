package catalog

// KeySource names which field a video key was derived from.
type KeySource int

const (
	KeyFromID KeySource = iota + 1
	KeyFromSlug
	KeyFromMediaURL
	KeyFromComposite
)

func (s KeySource) String() string {
	switch s {
	case KeyFromID:
		return "id"
	case KeyFromSlug:
		return "slug"
	case KeyFromMediaURL:
		return "media_url"
	case KeyFromComposite:
		return "composite"
	}
	return "unknown"
}

// Key is the stable identity of a video used for saved items and the
// opened set.
type Key struct {
	Value  string
	Source KeySource
}

func (k Key) String() string { return k.Value }

// KeyOf resolves a video's key in priority order: id, slug, media URL, and
// finally "title|duration". The composite is always non-empty.
func KeyOf(v Video) Key {
	switch {
	case v.ID != "":
		return Key{Value: v.ID, Source: KeyFromID}
	case v.Slug != "":
		return Key{Value: v.Slug, Source: KeyFromSlug}
	case v.VideoURL != "":
		return Key{Value: v.VideoURL, Source: KeyFromMediaURL}
	case v.LegacyVideoURL != "":
		return Key{Value: v.LegacyVideoURL, Source: KeyFromMediaURL}
	}
	return Key{Value: v.Title + "|" + string(v.Duration), Source: KeyFromComposite}
}
