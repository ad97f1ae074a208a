package fields

import "strings"

// Source names where a section reads its content from.
type Source int

const (
	// SourcePost reads from the entity's own fields.
	SourcePost Source = iota
	// SourceOptions reads from the shared Option set.
	SourceOptions
)

// CommonChoice is the flag value that selects the shared Option set.
const CommonChoice = "Common"

func (s Source) String() string {
	if s == SourceOptions {
		return "options"
	}
	return "post"
}

// ChoiceSource reads the Common/custom flag stored at key. Only the exact value "Common"
// selects the Option set; a missing or different value keeps the per-post fields.
func ChoiceSource(post Set, key string) Source {
	if strings.TrimSpace(post.String(key)) == CommonChoice {
		return SourceOptions
	}
	return SourcePost
}

// Select returns the field set to read for the given flag.
func Select(options, post Set, key string) (Set, Source) {
	src := ChoiceSource(post, key)
	if src == SourceOptions {
		return options, src
	}
	return post, src
}
