package syllabus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSubject(t *testing.T) {
	assert.True(t, IsSubject("Science"))
	assert.True(t, IsSubject("Social Science"))
	assert.False(t, IsSubject("science"))
	assert.False(t, IsSubject("Hindi"))
	assert.False(t, IsSubject(""))
}

func TestIsMarks(t *testing.T) {
	for _, m := range []int{1, 2, 3, 5} {
		assert.True(t, IsMarks(m), "marks %d", m)
	}
	for _, m := range []int{0, 4, 6, -1} {
		assert.False(t, IsMarks(m), "marks %d", m)
	}
}

func TestIsClassLevel(t *testing.T) {
	assert.True(t, IsClassLevel(9))
	assert.False(t, IsClassLevel(6))
	assert.False(t, IsClassLevel(13))
}

func TestSortSubjects(t *testing.T) {
	got := SortSubjects([]string{"English", "Hindi", "Science", "English"})
	assert.Equal(t, []string{"Science", "English"}, got)
	assert.Empty(t, SortSubjects(nil))
}
