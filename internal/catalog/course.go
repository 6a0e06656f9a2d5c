// Package catalog models the published course catalog and the sources it
// can be read from (the published JSON feed, the S3 snapshot, a Redis
// read-through cache).
package catalog

// Section is one meeting group of a course. The leading letter of
// SectionName encodes the kind (L1 lecture, T2 tutorial, P1 practical).
type Section struct {
	SectionName string   `json:"section_name"`
	Instructor  string   `json:"Instructor"`
	Room        string   `json:"Room"`
	DaysTimes   []string `json:"Days_Times"`
}

// SectionKind is a human label for a section's meeting type.
type SectionKind string

const (
	KindLecture   SectionKind = "Lecture"
	KindTutorial  SectionKind = "Tutorial"
	KindPractical SectionKind = "Practical"
	KindOther     SectionKind = "Section"
)

// Kind classifies the section by the leading letter of its name.
func (s Section) Kind() SectionKind {
	if s.SectionName == "" {
		return KindOther
	}
	switch s.SectionName[0] {
	case 'L', 'l':
		return KindLecture
	case 'T', 't':
		return KindTutorial
	case 'P', 'p':
		return KindPractical
	default:
		return KindOther
	}
}

// Course mirrors one entry of the published catalog JSON. L, P and U are
// the lecture/practical/unit credit triple; the *_sections fields are the
// published section counts, while Sections carries the actual sections.
type Course struct {
	CourseCode        string    `json:"course_code"`
	CourseName        string    `json:"course_name"`
	L                 int       `json:"L"`
	P                 int       `json:"P"`
	U                 int       `json:"U"`
	LectureSections   int       `json:"lecture_sections"`
	TutorialSections  int       `json:"tut_sections"`
	PracticalSections int       `json:"practical_sections"`
	Midsem            string    `json:"midsem"`
	Compre            string    `json:"compre"`
	IC                string    `json:"IC"`
	Sections          []Section `json:"sections"`
}

// Instructors returns the distinct instructor names across sections in
// first-occurrence order, skipping blanks and the scraper's "Unknown"
// placeholder.
func (c *Course) Instructors() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, sec := range c.Sections {
		name := sec.Instructor
		if name == "" || name == "Unknown" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// SectionsOfKind filters sections by kind, preserving order.
func (c *Course) SectionsOfKind(kind SectionKind) []Section {
	var out []Section
	for _, sec := range c.Sections {
		if sec.Kind() == kind {
			out = append(out, sec)
		}
	}
	return out
}
