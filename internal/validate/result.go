// Package validate holds the per-field input rules of the registration forms.
// Validators are pure: they never touch a session, a store or the clock
// except through their arguments.
package validate

// Reason identifies why an input was rejected. Values double as message catalog keys.
type Reason string

const (
	ReasonNameLength     Reason = "reject.name.length"
	ReasonNameCharset    Reason = "reject.name.charset"
	ReasonGameIDLength   Reason = "reject.game_id.length"
	ReasonGameIDCharset  Reason = "reject.game_id.charset"
	ReasonLevelNumber    Reason = "reject.level.number"
	ReasonLevelRange     Reason = "reject.level.range"
	ReasonRegion         Reason = "reject.region.unknown"
	ReasonTitleEmpty     Reason = "reject.title.empty"
	ReasonTitleLength    Reason = "reject.title.length"
	ReasonDateFormat     Reason = "reject.date.format"
	ReasonDateNotFuture  Reason = "reject.date.not_future"
	ReasonTimeFormat     Reason = "reject.time.format"
	ReasonAmountNumber   Reason = "reject.amount.number"
	ReasonAmountNegative Reason = "reject.amount.negative"
	ReasonAmountTooLarge Reason = "reject.amount.too_large"
	ReasonChoice         Reason = "reject.choice"
)

// Result is either an accepted canonical value or a rejection reason.
type Result[T any] struct {
	Value  T
	Reason Reason
	ok     bool
}

func accept[T any](v T) Result[T] { return Result[T]{Value: v, ok: true} }

func reject[T any](r Reason) Result[T] { return Result[T]{Reason: r} }

// OK reports whether the input was accepted.
func (r Result[T]) OK() bool { return r.ok }
