package universe

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/rand"
)

const nameSuffixLength = 8

// Repos maps the local name of an added repository to its URL
type Repos map[string]string

func (r Repos) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new mapping holding the entries of both; other wins on conflict.
func (r Repos) Merge(other Repos) Repos {
	merged := make(Repos, len(r)+len(other))
	for name, url := range r {
		merged[name] = url
	}
	for name, url := range other {
		merged[name] = url
	}
	return merged
}

// RandomName returns prefix-<random lowercase alphanumerics>
func RandomName(prefix string) string {
	return prefix + "-" + rand.String(nameSuffixLength)
}
