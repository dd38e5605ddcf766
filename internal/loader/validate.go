package loader

import (
	"fmt"

	"github.com/voyagen/tubestats/internal/models"
)

// FieldError names the column that failed record validation.
type FieldError struct {
	Column string
	Err    error
}

func (e *FieldError) Error() string { return e.Column + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// ValidateRecord checks the value ranges of a parsed record.
func ValidateRecord(r models.ChannelRecord) error {
	switch {
	case r.Subscribers < 0:
		return &FieldError{Column: models.ColumnSubscribers, Err: fmt.Errorf("negative value %d", r.Subscribers)}
	case r.TotalVideos < 0:
		return &FieldError{Column: models.ColumnTotalVideos, Err: fmt.Errorf("negative value %d", r.TotalVideos)}
	case r.TotalViews < 0:
		return &FieldError{Column: models.ColumnTotalViews, Err: fmt.Errorf("negative value %d", r.TotalViews)}
	case r.MonthlyEarnings < 0:
		return &FieldError{Column: models.ColumnMonthlyEarnings, Err: fmt.Errorf("negative value %g", r.MonthlyEarnings)}
	case r.EngagementRate < 0 || r.EngagementRate > 1:
		return &FieldError{Column: models.ColumnEngagementRate, Err: fmt.Errorf("%g outside [0,1]", r.EngagementRate)}
	}
	return nil
}
