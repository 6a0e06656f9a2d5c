// Package reviews holds professor review data: the canonical
// professor-to-course-to-reviews shape the bot serves, the raw scraper
// shape it is ingested from, and name matching.
package reviews

import (
	"regexp"
	"sort"
	"strings"
)

// Set maps professor name to course code to review texts.
type Set map[string]map[string][]string

// RawReview is one scraped review before normalization. The scraper
// attributes reviews it cannot place to the professor "Unknown".
type RawReview struct {
	Reviewer  string `json:"reviewer"`
	Rating    string `json:"rating"`
	Comment   string `json:"comment"`
	Professor string `json:"professor"`
}

// NormalizeRaw regroups scraper output (course to reviews) into the
// professor-keyed Set. Unattributed reviews and empty comments are
// dropped.
func NormalizeRaw(raw map[string][]RawReview) Set {
	out := Set{}
	for course, courseReviews := range raw {
		for _, r := range courseReviews {
			prof := strings.TrimSpace(r.Professor)
			if prof == "" || prof == "Unknown" {
				continue
			}
			comment := strings.TrimSpace(r.Comment)
			if comment == "" {
				continue
			}
			if out[prof] == nil {
				out[prof] = map[string][]string{}
			}
			out[prof][course] = append(out[prof][course], comment)
		}
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

func normalize(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// FindProfessor resolves a queried name to a stored professor key.
// Normalized equality or substring wins first; a second pass matches any
// word of the query (three letters or longer) so "Prof. Banerjee" still
// finds "Rahul Banerjee". Professors are scanned in sorted order so ties
// resolve deterministically.
func FindProfessor(set Set, name string) (string, bool) {
	query := normalize(name)
	if query == "" {
		return "", false
	}

	profs := make([]string, 0, len(set))
	for prof := range set {
		profs = append(profs, prof)
	}
	sort.Strings(profs)

	for _, prof := range profs {
		normalized := normalize(prof)
		if normalized == query || strings.Contains(normalized, query) {
			return prof, true
		}
	}

	for _, word := range strings.Fields(name) {
		w := normalize(word)
		if len(w) <= 2 {
			continue
		}
		for _, prof := range profs {
			if strings.Contains(normalize(prof), w) {
				return prof, true
			}
		}
	}

	return "", false
}

// Courses lists a professor's courses in sorted order.
func (s Set) Courses(prof string) []string {
	byCourse := s[prof]
	out := make([]string, 0, len(byCourse))
	for course := range byCourse {
		out = append(out, course)
	}
	sort.Strings(out)
	return out
}
