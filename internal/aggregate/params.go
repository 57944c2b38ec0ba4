// Package aggregate derives the listening summaries shown to the user from a
// reconciled listening table.
//
// Every function here is pure: it reads the table and returns fresh values.
// Durations are summed in seconds and only rounded, half away from zero, when
// converted to the reported unit.
package aggregate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ademuri/listen-history/internal/listening"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid parameters")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notfuture rejects years after the current one.
	if err := v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	}); err != nil {
		panic(err)
	}
	return v
}

// Params selects the slice of the table an aggregate covers.
type Params struct {
	// Inclusive year bounds.
	MinYear int `validate:"gte=2019"`
	MaxYear int `validate:"gtefield=MinYear,notfuture"`
	// Artists selects the series of ArtistSeries.
	Artists []string `validate:"dive,required"`
}

// DefaultParams covers every year present in t, with no artist selected.
// For an empty table the range runs from listening.MinYear to this year.
func DefaultParams(t *listening.Table) Params {
	years := t.Years()
	if len(years) == 0 {
		return Params{MinYear: listening.MinYear, MaxYear: max(listening.MinYear, time.Now().Year())}
	}
	return Params{MinYear: years[0], MaxYear: years[len(years)-1]}
}

// Validate checks the year range and the selected artist names.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be %s or later, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "notfuture":
		return fmt.Sprintf("%s must not be after %d, got %v", fe.Field(), time.Now().Year(), fe.Value())
	case "required":
		return fmt.Sprintf("%s must not contain empty names", fe.Field())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

func (p Params) inRange(year int) bool {
	return year >= p.MinYear && year <= p.MaxYear
}

func (p Params) String() string {
	if p.MinYear == p.MaxYear {
		return fmt.Sprintf("%d", p.MinYear)
	}
	return fmt.Sprintf("%d to %d", p.MinYear, p.MaxYear)
}
