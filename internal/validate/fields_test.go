package validate

import (
	"strings"
	"testing"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 14, 30, 0, 0, time.UTC)

func TestName(t *testing.T) {
	r := Name("  bob  ")
	require.True(t, r.OK())
	assert.Equal(t, "Bob", r.Value)

	r = Name("mary   ann SMITH")
	require.True(t, r.OK())
	assert.Equal(t, "Mary Ann Smith", r.Value)

	assert.Equal(t, ReasonNameCharset, Name("bob 7").Reason)
	assert.Equal(t, ReasonNameCharset, Name("bob_").Reason)
	assert.Equal(t, ReasonNameLength, Name("b").Reason)
	assert.Equal(t, ReasonNameLength, Name("").Reason)
	assert.Equal(t, ReasonNameLength, Name(strings.Repeat("a", 31)).Reason)
	assert.True(t, Name(strings.Repeat("a", 30)).OK())
}

func TestNameProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("accepted names are title-cased letters and spaces of length 2-30", prop.ForAll(
		func(raw string) bool {
			r := Name(raw)
			if !r.OK() {
				return true
			}
			v := r.Value
			if n := utf8.RuneCountInString(v); n < 2 || n > 30 {
				return false
			}
			for _, word := range strings.Split(v, " ") {
				for i, c := range word {
					if !unicode.IsLetter(c) {
						return false
					}
					if i == 0 && !unicode.IsUpper(c) {
						return false
					}
					if i > 0 && !unicode.IsLower(c) {
						return false
					}
				}
			}
			return true
		},
		gen.RegexMatch(`[a-zA-Z ]{0,40}`),
	))

	properties.Property("input containing a digit is never accepted", prop.ForAll(
		func(prefix string, d int) bool {
			return !Name(prefix + string(rune('0'+d))).OK()
		},
		gen.AlphaString(),
		gen.IntRange(0, 9),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestGameID(t *testing.T) {
	assert.Equal(t, ReasonGameIDLength, GameID("ab").Reason)
	assert.Equal(t, ReasonGameIDLength, GameID(strings.Repeat("x", 31)).Reason)
	assert.Equal(t, ReasonGameIDCharset, GameID("bob-gamer").Reason)
	r := GameID(" Bob_Gamer123 ")
	require.True(t, r.OK())
	assert.Equal(t, "Bob_Gamer123", r.Value)
}

func TestLevel(t *testing.T) {
	assert.Equal(t, ReasonLevelNumber, Level("abc").Reason)
	assert.Equal(t, ReasonLevelNumber, Level("").Reason)
	assert.Equal(t, ReasonLevelRange, Level("0").Reason)
	assert.Equal(t, ReasonLevelRange, Level("1001").Reason)
	assert.Equal(t, ReasonLevelRange, Level("99999999999999999999999").Reason)
	r := Level(" 55 ")
	require.True(t, r.OK())
	assert.Equal(t, 55, r.Value)
	assert.True(t, Level("1").OK())
	assert.True(t, Level("1000").OK())
}

func TestRegion(t *testing.T) {
	r := Region("maharashtra")
	require.True(t, r.OK())
	assert.Equal(t, "Maharashtra", r.Value)

	r = Region("  TAMIL   nadu ")
	require.True(t, r.OK())
	assert.Equal(t, "Tamil Nadu", r.Value)

	r = Region("jammu and kashmir")
	require.True(t, r.OK())
	assert.Equal(t, "Jammu and Kashmir", r.Value)

	r = Region("DADRA AND NAGAR HAVELI AND DAMAN AND DIU")
	require.True(t, r.OK())
	assert.Equal(t, "Dadra and Nagar Haveli and Daman and Diu", r.Value)

	assert.Equal(t, ReasonRegion, Region("Narnia").Reason)
	assert.Equal(t, ReasonRegion, Region("").Reason)
}

func TestDate(t *testing.T) {
	assert.Equal(t, ReasonDateNotFuture, Date("2026-10-18", fixedNow).Reason, "today is rejected")
	assert.Equal(t, ReasonDateNotFuture, Date("2026-10-01", fixedNow).Reason)
	assert.Equal(t, ReasonDateFormat, Date("15-09-2025", fixedNow).Reason)
	assert.Equal(t, ReasonDateFormat, Date("2026-13-01", fixedNow).Reason)
	assert.Equal(t, ReasonDateFormat, Date("tomorrow", fixedNow).Reason)

	r := Date("2026-10-19", fixedNow)
	require.True(t, r.OK(), "tomorrow is accepted")
	assert.Equal(t, "2026-10-19", r.Value.Format("2006-01-02"))
}

func TestDateUsesServerLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	// 2026-10-18 23:30 UTC is already 2026-10-19 in IST.
	now := time.Date(2026, time.October, 18, 23, 30, 0, 0, time.UTC).In(loc)
	assert.Equal(t, ReasonDateNotFuture, Date("2026-10-19", now).Reason)
	assert.True(t, Date("2026-10-20", now).OK())
}

func TestTime(t *testing.T) {
	for _, ok := range []string{"00:00", "09:05", "23:59", " 18:30 "} {
		assert.True(t, Time(ok).OK(), ok)
	}
	for _, bad := range []string{"24:00", "9:05", "12:60", "noon", "12-30", ""} {
		assert.Equal(t, ReasonTimeFormat, Time(bad).Reason, bad)
	}
}

func TestAmount(t *testing.T) {
	assert.Equal(t, ReasonAmountNumber, Amount("ten").Reason)
	assert.Equal(t, ReasonAmountNumber, Amount("1.5").Reason)
	assert.Equal(t, ReasonAmountNegative, Amount("-1").Reason)
	assert.Equal(t, ReasonAmountNegative, Amount("-99999999999999999999999").Reason)
	assert.Equal(t, ReasonAmountTooLarge, Amount("99999999999999999999999").Reason)
	r := Amount("0")
	require.True(t, r.OK())
	assert.Equal(t, int64(0), r.Value)
	r = Amount("5000")
	require.True(t, r.OK())
	assert.Equal(t, int64(5000), r.Value)
}

func TestTournamentTitle(t *testing.T) {
	assert.Equal(t, ReasonTitleEmpty, TournamentName("   ").Reason)
	assert.Equal(t, ReasonTitleLength, TournamentName(strings.Repeat("x", 65)).Reason)
	r := TournamentName(" Sunday Scrims #4 ")
	require.True(t, r.OK())
	assert.Equal(t, "Sunday Scrims #4", r.Value)
}

func TestRejectedResultCarriesNoValue(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("rejections never carry a value", prop.ForAll(
		func(raw string) bool {
			if r := Level(raw); !r.OK() && r.Value != 0 {
				return false
			}
			if r := GameID(raw); !r.OK() && r.Value != "" {
				return false
			}
			if r := Amount(raw); !r.OK() && r.Value != 0 {
				return false
			}
			return true
		},
		gen.AnyString(),
	))
	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
