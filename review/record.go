package review

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Field names of a review record.
const (
	FieldReviewBy              = "review_by"
	FieldReviewID              = "review_id"
	FieldSinceReview           = "days_or_years_since_review"
	FieldLocation              = "location"
	FieldCost                  = "cost"
	FieldInstallationTime      = "installation_time"
	FieldProvider              = "provider"
	FieldPreSalesInformation   = "pre_sales_information"
	FieldInstallCoordination   = "install_co-ordination"
	FieldConnectionReliability = "connection_reliability"
	FieldTechSupport           = "tech_support"
	FieldServices              = "services"
	FieldValueForMoney         = "value_for_money"
)

// FieldReviewDate is not extracted from the page. It is derived from
// FieldSinceReview by ResolveElapsed and only appears in exports and storage.
const FieldReviewDate = "review_date"

// Columns lists the extracted fields in table column order.
var Columns = []string{
	FieldReviewBy,
	FieldReviewID,
	FieldSinceReview,
	FieldLocation,
	FieldCost,
	FieldInstallationTime,
	FieldProvider,
	FieldPreSalesInformation,
	FieldInstallCoordination,
	FieldConnectionReliability,
	FieldTechSupport,
	FieldServices,
	FieldValueForMoney,
}

// IsColumn reports whether key is one of the extracted fields.
func IsColumn(key string) bool {
	return slices.Contains(Columns, key)
}

// Record holds the fields extracted from a single review. A field that could
// not be extracted is absent from the map.
type Record map[string]string

// set stores value under key if key is a known column.
func (r Record) set(key, value string) bool {
	if !IsColumn(key) {
		return false
	}
	r[key] = value
	return true
}

// ReviewDate resolves the record's elapsed-time field against now.
func (r Record) ReviewDate(now time.Time) (string, bool) {
	elapsed, ok := r[FieldSinceReview]
	if !ok {
		return "", false
	}
	return ResolveElapsed(elapsed, now)
}

// Review pairs an extracted record with the reasons any field is missing.
type Review struct {
	Record Record
	Misses []FieldError
}

var (
	// ErrNoReviews is returned when a page contains no review anchors.
	ErrNoReviews = errors.New("no reviews in page")

	// ErrNotFound means the markup a field is read from is absent.
	ErrNotFound = errors.New("markup not found")

	// ErrMalformed means the markup exists but does not have the expected
	// shape.
	ErrMalformed = errors.New("malformed markup")

	// ErrUnknownField means a rating label does not name a known column.
	ErrUnknownField = errors.New("unknown field")
)

// FieldError describes why a single field was not extracted.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}
