package semester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

type gradeUser int

func (g gradeUser) GetGrade() int { return int(g) }

func fixedClock(year int) Option {
	return WithClock(func() time.Time { return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC) })
}

func TestSemesterFixture(t *testing.T) {
	codec := New(DefaultConfig())

	id, err := codec.Semester(2012, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 13, id)

	id, err = codec.Semester(1, 1, gradeUser(2012))
	require.NoError(t, err)
	assert.Equal(t, 13, id)
}

func TestSemesterRelativeEqualsAbsolute(t *testing.T) {
	codec := New(Config{BaselineYear: 2006, SemestersPerYear: 3})
	for _, grade := range []int{2008, 2012, 2019} {
		user := gradeUser(grade)
		for offset := 1; offset <= 6; offset++ {
			for number := 1; number <= 3; number++ {
				relative, err := codec.Semester(offset, number, user)
				require.NoError(t, err)
				absolute, err := codec.Semester(grade+offset-1, number, user)
				require.NoError(t, err)
				assert.Equal(t, absolute, relative, "grade %d offset %d number %d", grade, offset, number)
			}
		}
	}
}

func TestSemesterRejectsInvalidInput(t *testing.T) {
	codec := New(DefaultConfig())

	_, err := codec.Semester(2012, 3, nil)
	assert.ErrorIs(t, err, appErrors.ErrMalformedSemester)

	_, err = codec.Semester(2012, 0, nil)
	assert.ErrorIs(t, err, appErrors.ErrMalformedSemester)

	_, err = codec.Semester(2, 1, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAllSemestersCappedAtProgramLength(t *testing.T) {
	codec := New(DefaultConfig(), fixedClock(2026))

	ids := codec.AllSemesters(gradeUser(2012))

	require.Len(t, ids, 8)
	assert.Equal(t, []int{13, 14, 15, 16, 17, 18, 19, 20}, ids)
	first, err := codec.Semester(1, 1, gradeUser(2012))
	require.NoError(t, err)
	assert.Equal(t, first, ids[0])
}

func TestAllSemestersGrowsWithElapsedYears(t *testing.T) {
	for year, want := range map[int]int{2011: 0, 2012: 0, 2013: 2, 2015: 6, 2030: 8} {
		codec := New(DefaultConfig(), fixedClock(year))
		ids := codec.AllSemesters(gradeUser(2012))
		assert.Len(t, ids, want, "now=%d", year)
		assert.Zero(t, len(ids)%2)
	}

	uncapped := New(Config{BaselineYear: 2006, SemestersPerYear: 2}, fixedClock(2026))
	assert.Len(t, uncapped.AllSemesters(gradeUser(2012)), 28)
	assert.Empty(t, uncapped.AllSemesters(nil))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := New(DefaultConfig())
	for id := 1; id <= 40; id++ {
		span, err := codec.Decode(id)
		require.NoError(t, err)
		back, err := codec.Encode(span)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}

	span, err := codec.Decode(16)
	require.NoError(t, err)
	assert.Equal(t, "2013-2014 2", span.String())

	_, err = codec.Decode(0)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestParseSemester(t *testing.T) {
	span, err := ParseSemester("2013-2014 2")
	require.NoError(t, err)
	assert.Equal(t, Span{StartYear: 2013, EndYear: 2014, Semester: 2}, span)

	for _, input := range []string{"2013-2015 2", "abc", "2013-2014 3", "2013-2014 0", "2013-2014", "20a3-2014 1", "2013-2014 1 extra"} {
		_, err := ParseSemester(input)
		assert.ErrorIs(t, err, appErrors.ErrMalformedSemester, input)
	}
}

func TestCodecParseSemesterUsesConfiguredCardinality(t *testing.T) {
	codec := New(Config{BaselineYear: 2006, SemestersPerYear: 3})

	span, err := codec.ParseSemester(" 2013-2014 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, span.Semester)
}

func TestParseDayOfWeek(t *testing.T) {
	seen := map[int]string{}
	for i, label := range WeekdayLabels() {
		day, err := ParseDayOfWeek(label)
		require.NoError(t, err)
		assert.Equal(t, i+1, day)
		seen[day] = label
	}
	assert.Len(t, seen, 7)

	day, err := ParseDayOfWeek(" 星期日 ")
	require.NoError(t, err)
	assert.Equal(t, 7, day)

	for _, label := range []string{"星期八", "周一", "Monday", ""} {
		day, err := ParseDayOfWeek(label)
		assert.ErrorIs(t, err, appErrors.ErrUnknownLabel, label)
		assert.Zero(t, day)
	}
}
