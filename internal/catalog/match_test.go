package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourses() []Course {
	return []Course{
		{
			CourseCode:        "CS F111",
			CourseName:        "Computer Programming",
			L:                 3,
			P:                 1,
			U:                 4,
			LectureSections:   2,
			PracticalSections: 1,
			Midsem:            "10/03 FN",
			Compre:            "10/05 AN",
			IC:                "Rahul Banerjee",
			Sections: []Section{
				{SectionName: "L1", Instructor: "Rahul Banerjee", Room: "F102", DaysTimes: []string{"M_4", "W_4", "F_4"}},
				{SectionName: "L2", Instructor: "Sundar B", Room: "F103", DaysTimes: []string{"M_5", "W_5", "F_5"}},
				{SectionName: "P1", Instructor: "Rahul Banerjee", Room: "D311", DaysTimes: []string{"T_7", "T_8"}},
			},
		},
		{
			CourseCode:       "MATH F211",
			CourseName:       "Mathematics III",
			L:                3,
			U:                3,
			LectureSections:  1,
			TutorialSections: 1,
			Midsem:           "12/03 AN",
			Compre:           "12/05 FN",
			IC:               "A Sharma",
			Sections: []Section{
				{SectionName: "L1", Instructor: "A Sharma", Room: "F201", DaysTimes: []string{"T_3", "Th_3", "S_3"}},
				{SectionName: "T1", Instructor: "A Sharma", Room: "F202", DaysTimes: []string{"F_1"}},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "csf111", Normalize("CS F111"))
	assert.Equal(t, "csf111", Normalize("cs-f111"))
	assert.Equal(t, "computerprogramming", Normalize("Computer Programming!"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("  ?! "))
}

func TestExtractCourseCode(t *testing.T) {
	assert.Equal(t, "CS F111", ExtractCourseCode("is cs f111 offered this semester?"))
	assert.Equal(t, "CSF111", ExtractCourseCode("details for CSF111 please"))
	assert.Equal(t, "MATH F211", ExtractCourseCode("who teaches math f211"))
	assert.Equal(t, "", ExtractCourseCode("who teaches mathematics"))
	assert.Equal(t, "", ExtractCourseCode(""))
}

func TestFindByNormalizedCode(t *testing.T) {
	courses := sampleCourses()

	found, ok := Find(courses, "csf111")
	require.True(t, ok)
	assert.Equal(t, "CS F111", found.CourseCode)

	found, ok = Find(courses, "CS F111")
	require.True(t, ok)
	assert.Equal(t, "CS F111", found.CourseCode)
}

func TestFindByNameSubstring(t *testing.T) {
	courses := sampleCourses()

	found, ok := Find(courses, "programming")
	require.True(t, ok)
	assert.Equal(t, "CS F111", found.CourseCode)

	found, ok = Find(courses, "Mathematics")
	require.True(t, ok)
	assert.Equal(t, "MATH F211", found.CourseCode)
}

func TestFindMisses(t *testing.T) {
	courses := sampleCourses()

	_, ok := Find(courses, "BIO F110")
	assert.False(t, ok)

	_, ok = Find(courses, "")
	assert.False(t, ok)

	_, ok = Find(nil, "csf111")
	assert.False(t, ok)
}

func TestFindByCode(t *testing.T) {
	courses := sampleCourses()

	found, ok := FindByCode(courses, "cs f111")
	require.True(t, ok)
	assert.Equal(t, "CS F111", found.CourseCode)

	_, ok = FindByCode(courses, "CSF111")
	assert.False(t, ok, "FindByCode is exact, not normalized")

	_, ok = FindByCode(courses, "")
	assert.False(t, ok)
}
