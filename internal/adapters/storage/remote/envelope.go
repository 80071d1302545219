package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hylla/taskboard/internal/app"
)

// fieldRef names one column in a query's projection.
type fieldRef struct {
	Field struct {
		Name string `json:"Name"`
	} `json:"field"`
}

func fieldsOf(names ...string) []fieldRef {
	out := make([]fieldRef, len(names))
	for i, name := range names {
		out[i].Field.Name = name
	}
	return out
}

type whereClause struct {
	FieldName string   `json:"FieldName"`
	Operator  string   `json:"Operator"`
	Values    []string `json:"Values"`
	Include   bool     `json:"Include"`
}

func equalTo(field, value string) whereClause {
	return whereClause{FieldName: field, Operator: "EqualTo", Values: []string{value}, Include: true}
}

type orderClause struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

var byIDAscending = []orderClause{{FieldName: "Id", SortType: "ASC"}}

type queryRequest struct {
	Fields  []fieldRef    `json:"fields"`
	Where   []whereClause `json:"where,omitempty"`
	OrderBy []orderClause `json:"orderBy,omitempty"`
}

type mutationRequest struct {
	Records []map[string]any `json:"records"`
}

type deleteRequest struct {
	RecordIDs []int64 `json:"RecordIds"`
}

type fieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

type recordResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []fieldError    `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// response is the envelope every remote call answers with. Results is a
// pointer so an absent field can be told apart from an empty batch.
type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Results *[]recordResult `json:"results"`
}

// err reports a top-level failure.
func (r response) err() error {
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "remote request failed"
	}
	return errors.New(msg)
}

// firstResult returns the first successful record of a mutation batch. The
// first failed record, if any, is surfaced instead as its first field error
// or else its message.
func (r response) firstResult() (recordResult, error) {
	if err := r.err(); err != nil {
		return recordResult{}, err
	}
	if r.Results == nil {
		return recordResult{}, app.ErrAmbiguousResult
	}
	for _, result := range *r.Results {
		if result.Success {
			continue
		}
		if len(result.Errors) > 0 {
			fe := result.Errors[0]
			return recordResult{}, fmt.Errorf("%s: %s", fe.FieldLabel, fe.Message)
		}
		if msg := strings.TrimSpace(result.Message); msg != "" {
			return recordResult{}, errors.New(msg)
		}
		return recordResult{}, errors.New("remote record rejected")
	}
	for _, result := range *r.Results {
		if result.Success {
			return result, nil
		}
	}
	return recordResult{}, app.ErrAmbiguousResult
}

// hasData reports whether raw carries a JSON value other than null.
func hasData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// flexString accepts JSON strings and numbers. Lookup fields that arrive as
// {"Id":..,"Name":..} objects decode to their Id.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*f = ""
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	case trimmed[0] == '{':
		var lookup struct {
			ID flexString `json:"Id"`
		}
		if err := json.Unmarshal(trimmed, &lookup); err != nil {
			return err
		}
		*f = lookup.ID
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("decode id %s: %w", trimmed, err)
		}
		*f = flexString(n.String())
		return nil
	}
}

// flexInt accepts JSON numbers and numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return fmt.Errorf("decode number %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

// wireID converts a record id to the numeric form the service expects. Ids
// the service could never have issued cannot exist there.
func wireID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, app.ErrNotFound
	}
	return n, nil
}
