// Package semester converts between academic-year labels and the compact semester ids used to
// index portal records.
package semester

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/trotyl/uestc-sdk-go/pkg/errors"
)

// AbsoluteYearThreshold separates calendar years from grade-relative offsets.
const AbsoluteYearThreshold = 1000

// GradeProvider exposes the entry year used to resolve relative semester offsets.
type GradeProvider interface {
	GetGrade() int
}

// Config holds the institution constants behind the id formula
// (year-BaselineYear)*SemestersPerYear + number.
type Config struct {
	BaselineYear     int
	SemestersPerYear int
	// ProgramYears caps AllSemesters; zero disables the cap.
	ProgramYears int
}

// DefaultConfig maps grade 2012, semester 1 to id 13.
func DefaultConfig() Config {
	return Config{BaselineYear: 2006, SemestersPerYear: 2, ProgramYears: 4}
}

// Span is one semester in "<start>-<end> <number>" form.
type Span struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
	Semester  int `json:"semester"`
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d %d", s.StartYear, s.EndYear, s.Semester)
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock overrides the time source used by AllSemesters.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec encodes and decodes semester ids. It is stateless apart from its configuration.
type Codec struct {
	cfg Config
	now func() time.Time
}

// New returns a Codec. Non-positive constants fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Codec {
	def := DefaultConfig()
	if cfg.BaselineYear <= 0 {
		cfg.BaselineYear = def.BaselineYear
	}
	if cfg.SemestersPerYear <= 0 {
		cfg.SemestersPerYear = def.SemestersPerYear
	}
	if cfg.ProgramYears < 0 {
		cfg.ProgramYears = 0
	}
	c := &Codec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the constants in use.
func (c *Codec) Config() Config { return c.cfg }

// Semester returns the id for a year and semester number. yearOrOffset is a calendar year when
// it is at least AbsoluteYearThreshold, otherwise the study year of user (1 is the grade year).
func (c *Codec) Semester(yearOrOffset, number int, user GradeProvider) (int, error) {
	if number < 1 || number > c.cfg.SemestersPerYear {
		return 0, appErrors.Clone(appErrors.ErrMalformedSemester,
			fmt.Sprintf("semester number %d outside 1..%d", number, c.cfg.SemestersPerYear))
	}
	year := yearOrOffset
	if yearOrOffset < AbsoluteYearThreshold {
		if user == nil {
			return 0, appErrors.Clone(appErrors.ErrValidation, "relative semester year requires a user grade")
		}
		year = user.GetGrade() + yearOrOffset - 1
	}
	return (year-c.cfg.BaselineYear)*c.cfg.SemestersPerYear + number, nil
}

// AllSemesters lists every id from the user's first semester up to now, capped at ProgramYears.
func (c *Codec) AllSemesters(user GradeProvider) []int {
	if user == nil {
		return []int{}
	}
	grade := user.GetGrade()
	years := c.now().Year() - grade
	if years < 0 {
		years = 0
	}
	if c.cfg.ProgramYears > 0 && years > c.cfg.ProgramYears {
		years = c.cfg.ProgramYears
	}
	first := (grade-c.cfg.BaselineYear)*c.cfg.SemestersPerYear + 1
	ids := make([]int, years*c.cfg.SemestersPerYear)
	for i := range ids {
		ids[i] = first + i
	}
	return ids
}

// Encode returns the id of a parsed span.
func (c *Codec) Encode(span Span) (int, error) {
	if err := c.validate(span); err != nil {
		return 0, err
	}
	return c.Semester(span.StartYear, span.Semester, nil)
}

// Decode turns an id back into its span.
func (c *Codec) Decode(id int) (Span, error) {
	if id < 1 {
		return Span{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester id %d must be positive", id))
	}
	per := c.cfg.SemestersPerYear
	start := c.cfg.BaselineYear + (id-1)/per
	return Span{StartYear: start, EndYear: start + 1, Semester: (id-1)%per + 1}, nil
}

// ParseSemester parses text with the codec's semester cardinality.
func (c *Codec) ParseSemester(text string) (Span, error) {
	span, err := parseSpan(text)
	if err != nil {
		return Span{}, err
	}
	if err := c.validate(span); err != nil {
		return Span{}, err
	}
	return span, nil
}

func (c *Codec) validate(span Span) error {
	if span.EndYear != span.StartYear+1 {
		return appErrors.Clone(appErrors.ErrMalformedSemester,
			fmt.Sprintf("years %d-%d are not adjacent", span.StartYear, span.EndYear))
	}
	if span.Semester < 1 || span.Semester > c.cfg.SemestersPerYear {
		return appErrors.Clone(appErrors.ErrMalformedSemester,
			fmt.Sprintf("semester number %d outside 1..%d", span.Semester, c.cfg.SemestersPerYear))
	}
	return nil
}

var semesterPattern = regexp.MustCompile(`^\s*(\d{4})-(\d{4})\s+(\d{1,2})\s*$`)

// ParseSemester parses "2013-2014 2" using the default cardinality.
func ParseSemester(text string) (Span, error) {
	return defaultCodec.ParseSemester(text)
}

var defaultCodec = New(DefaultConfig())

func parseSpan(text string) (Span, error) {
	m := semesterPattern.FindStringSubmatch(text)
	if m == nil {
		return Span{}, appErrors.Clone(appErrors.ErrMalformedSemester, fmt.Sprintf("malformed semester string %q", text))
	}
	// The pattern only admits digits, so Atoi cannot fail.
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	number, _ := strconv.Atoi(m[3])
	return Span{StartYear: start, EndYear: end, Semester: number}, nil
}

var weekdays = map[string]int{
	"星期一": 1,
	"星期二": 2,
	"星期三": 3,
	"星期四": 4,
	"星期五": 5,
	"星期六": 6,
	"星期日": 7,
}

// ParseDayOfWeek maps a portal weekday label to 1 (Monday) through 7 (Sunday).
func ParseDayOfWeek(label string) (int, error) {
	if day, ok := weekdays[strings.TrimSpace(label)]; ok {
		return day, nil
	}
	return 0, appErrors.Clone(appErrors.ErrUnknownLabel, fmt.Sprintf("unknown weekday label %q", label))
}

// WeekdayLabels returns the labels ordered by day index.
func WeekdayLabels() []string {
	labels := make([]string, len(weekdays))
	for label, day := range weekdays {
		labels[day-1] = label
	}
	return labels
}
