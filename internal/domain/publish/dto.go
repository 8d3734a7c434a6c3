package publish

import (
	"time"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/validator"
)

type RangeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Range parses and validates the inclusive date range.
func (r RangeRequest) Range(now time.Time) (timeutil.Date, timeutil.Date, error) {
	var errs validator.ValidationErrors

	from, err := timeutil.ParseDate(r.From, now)
	if err != nil {
		errs.Add("from", "from must be a valid date")
	}
	to, err := timeutil.ParseDate(r.To, now)
	if err != nil {
		errs.Add("to", "to must be a valid date")
	}
	if len(errs) == 0 && to.Before(from) {
		errs.Add("to", "to must not be before from")
	}

	if len(errs) > 0 {
		return timeutil.Date{}, timeutil.Date{}, errs
	}
	return from, to, nil
}

type PublishResponse struct {
	From      timeutil.Date `json:"from"`
	To        timeutil.Date `json:"to"`
	Published []string      `json:"published"`
	Count     int           `json:"count"`
}

type PendingResponse struct {
	From           timeutil.Date `json:"from"`
	To             timeutil.Date `json:"to"`
	HasUnpublished bool          `json:"has_unpublished"`
}
