package transit

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when an input table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMissingTable is returned when a required input table cannot be found.
	ErrMissingTable = errors.New("missing required table")
)

// MissingBoundsError reports a project that reached the distributor without a start or end year.
type MissingBoundsError struct {
	ProjectID string
	City      string
	Field     string // start_year or end_year
}

func (e *MissingBoundsError) Error() string {
	return fmt.Sprintf("project %s (%s) has no %s", e.ProjectID, e.City, e.Field)
}

// Reason codes an excluded row.
type Reason string

const (
	// ReasonMissingStartYear marks rows without a parseable start year.
	ReasonMissingStartYear Reason = "missing_start_year"
	// ReasonMissingEndYear marks rows without a parseable end year.
	ReasonMissingEndYear Reason = "missing_end_year"
	// ReasonEndBeforeCutoff marks rows ending before the configured cutoff year.
	ReasonEndBeforeCutoff Reason = "end_year_before_cutoff"
	// ReasonNotMetro marks rows for light rail, commuter rail and other non-metro modes.
	ReasonNotMetro Reason = "not_metro"
	// ReasonMissingValue marks rows whose required quantity is missing.
	ReasonMissingValue Reason = "missing_value"
	// ReasonMissingCost marks rows without a nominal cost.
	ReasonMissingCost Reason = "missing_cost"
	// ReasonMissingPriceYear marks rows without a year to price the cost in.
	ReasonMissingPriceYear Reason = "missing_price_year"
	// ReasonUnmappedRate marks rows whose (year, currency) has no exchange rate.
	ReasonUnmappedRate Reason = "unmapped_exchange_rate"
	// ReasonUnmappedGroupKey marks rows that could not be placed in a group.
	ReasonUnmappedGroupKey Reason = "unmapped_group_key"
	// ReasonImplausibleYear marks rows whose start or end year lies outside
	// [MinPlausibleYear, MaxPlausibleYear], usually a typo such as 20188.
	ReasonImplausibleYear Reason = "implausible_year"
)

// Bounds on project years. Config year settings are validated against the same range.
const (
	MinPlausibleYear = 1800
	MaxPlausibleYear = 2200
)
