package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/park285/oto-tournament-bot/internal/domain"
)

const (
	nameMinLen   = 2
	nameMaxLen   = 30
	gameIDMinLen = 6
	gameIDMaxLen = 30
	levelMin     = 1
	levelMax     = 1000
	titleMaxLen  = 64
)

var (
	gameIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	clockPattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

	regionIndex = func() map[string]string {
		idx := make(map[string]string, len(domain.Regions))
		for _, r := range domain.Regions {
			idx[titleCase(r)] = r
		}
		return idx
	}()
)

// titleCase builds a fresh Caser per call; Casers are stateful and not goroutine-safe.
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// Name accepts 2–30 letters and spaces and returns the title-cased form.
func Name(raw string) Result[string] {
	s := strings.TrimSpace(raw)
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return reject[string](ReasonNameCharset)
		}
	}
	canonical := titleCase(strings.Join(strings.Fields(s), " "))
	if n := utf8.RuneCountInString(canonical); n < nameMinLen || n > nameMaxLen {
		return reject[string](ReasonNameLength)
	}
	return accept(canonical)
}

// GameID accepts 6–30 ASCII letters, digits and underscores.
func GameID(raw string) Result[string] {
	s := strings.TrimSpace(raw)
	if n := len(s); n < gameIDMinLen || n > gameIDMaxLen {
		return reject[string](ReasonGameIDLength)
	}
	if !gameIDPattern.MatchString(s) {
		return reject[string](ReasonGameIDCharset)
	}
	return accept(s)
}

// Level accepts an integer in [1,1000].
func Level(raw string) Result[int] {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return reject[int](ReasonLevelRange)
		}
		return reject[int](ReasonLevelNumber)
	}
	if n < levelMin || n > levelMax {
		return reject[int](ReasonLevelRange)
	}
	return accept(n)
}

// Region matches case-insensitively against domain.Regions and returns the
// list spelling ("Jammu and Kashmir"). The rejection reason does not
// enumerate the candidates.
func Region(raw string) Result[string] {
	key := titleCase(strings.Join(strings.Fields(raw), " "))
	if canonical, ok := regionIndex[key]; ok {
		return accept(canonical)
	}
	return reject[string](ReasonRegion)
}

// TournamentName accepts any non-empty name up to 64 characters.
func TournamentName(raw string) Result[string] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return reject[string](ReasonTitleEmpty)
	}
	if utf8.RuneCountInString(s) > titleMaxLen {
		return reject[string](ReasonTitleLength)
	}
	return accept(s)
}

// Date parses YYYY-MM-DD in now's location and requires a day strictly after now's day.
func Date(raw string, now time.Time) Result[time.Time] {
	loc := now.Location()
	d, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return reject[time.Time](ReasonDateFormat)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if !d.After(today) {
		return reject[time.Time](ReasonDateNotFuture)
	}
	return accept(d)
}

// Time accepts a 24-hour HH:MM wall-clock time.
func Time(raw string) Result[string] {
	s := strings.TrimSpace(raw)
	if !clockPattern.MatchString(s) {
		return reject[string](ReasonTimeFormat)
	}
	return accept(s)
}

// Amount accepts a non-negative integer (entry fee, prize pool).
func Amount(raw string) Result[int64] {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			if strings.HasPrefix(strings.TrimSpace(raw), "-") {
				return reject[int64](ReasonAmountNegative)
			}
			return reject[int64](ReasonAmountTooLarge)
		}
		return reject[int64](ReasonAmountNumber)
	}
	if n < 0 {
		return reject[int64](ReasonAmountNegative)
	}
	return accept(n)
}
