// Package syllabus holds the fixed enumerations shared by onboarding, the
// chat store, and the query client.
package syllabus

import "slices"

// Subjects supported by the answer backend, in display order.
var Subjects = []string{
	"Science",
	"Mathematics",
	"Social Science",
	"English",
}

// ClassLevels a student can pick during onboarding.
var ClassLevels = []int{7, 8, 9, 10, 11, 12}

// Marks are the answer weightings a question can target. They mirror the
// mark values used on CBSE papers.
var Marks = []int{1, 2, 3, 5}

// DefaultMarks is preselected in the marks picker.
const DefaultMarks = 3

// IsSubject reports whether s is one of Subjects (case-sensitive).
func IsSubject(s string) bool {
	return slices.Contains(Subjects, s)
}

// IsClassLevel reports whether n is one of ClassLevels.
func IsClassLevel(n int) bool {
	return slices.Contains(ClassLevels, n)
}

// IsMarks reports whether n is one of Marks.
func IsMarks(n int) bool {
	return slices.Contains(Marks, n)
}

// SortSubjects returns the known subjects of in, deduplicated and in
// canonical display order. Unknown names are dropped.
func SortSubjects(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range Subjects {
		if slices.Contains(in, s) {
			out = append(out, s)
		}
	}
	return out
}
