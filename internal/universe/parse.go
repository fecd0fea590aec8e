package universe

import "strings"

// ParseURLs splits a newline and/or comma separated list of repository URLs,
// dropping empty entries.
func ParseURLs(s string) []string {
	var urls []string
	for _, line := range strings.Split(s, "\n") {
		for _, token := range strings.Split(line, ",") {
			if token != "" {
				urls = append(urls, token)
			}
		}
	}
	return urls
}
