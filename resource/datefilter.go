// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"net/url"
	"time"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
)

const (
	// DateLayout is the canonical layout of the start_date and end_date
	// query parameters, minute precision, UTC.
	DateLayout = "2006-01-02-15-04"

	// dateParseLayout also accepts unpadded month, day, hour and minute,
	// e.g. "2024-1-2-3-4".
	dateParseLayout = "2006-1-2-15-4"

	// DateFormat is DateLayout in strftime notation, as reported to clients.
	DateFormat = "%Y-%m-%d-%H-%M"

	StartDateParam = "start_date"
	EndDateParam   = "end_date"
)

// DateFilter bounds a collection listing. Nil bounds are open. Set bounds
// are inclusive at minute precision: End includes the whole minute it
// falls in.
type DateFilter struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls within the filter.
func (f DateFilter) Contains(t time.Time) bool {
	if f.Start != nil && t.Before(*f.Start) {
		return false
	}
	if limit, ok := f.Limit(); ok && !t.Before(limit) {
		return false
	}
	return true
}

// Limit returns the exclusive upper bound of the filter, the first instant
// after the minute of End. ok is false when End is not set.
func (f DateFilter) Limit() (limit time.Time, ok bool) {
	if f.End == nil {
		return time.Time{}, false
	}
	return f.End.Truncate(time.Minute).Add(time.Minute), true
}

// IsZero reports whether the filter has no bounds.
func (f DateFilter) IsZero() bool {
	return f.Start == nil && f.End == nil
}

// ParseDateFilter reads the optional start_date and end_date parameters.
// A missing or empty parameter leaves its bound open. An unparsable value
// fails with BadRequest naming the parameter, the value
// and the expected format.
func ParseDateFilter(q url.Values) (DateFilter, error) {
	var f DateFilter

	start, err := parseDate(q, StartDateParam)
	if err != nil {
		return DateFilter{}, err
	}
	f.Start = start

	end, err := parseDate(q, EndDateParam)
	if err != nil {
		return DateFilter{}, err
	}
	f.End = end

	return f, nil
}

func parseDate(q url.Values, param string) (*time.Time, error) {
	value := q.Get(param)
	if value == "" {
		return nil, nil
	}

	t, err := time.ParseInLocation(dateParseLayout, value, time.UTC)
	if err != nil {
		return nil, apierrors.BadRequest("Invalid %s value '%s', expected format %s", param, value, DateFormat).
			With("parameter", param).
			With("value", value).
			With("format", DateFormat)
	}
	return &t, nil
}
