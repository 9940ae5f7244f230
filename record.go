package tdworkflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// flexID decodes an identifier sent either as a JSON string ("115819") or
// as a JSON number. The workflow API sends string ids.
type flexID int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return &idError{raw: string(data)}
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return &idError{raw: string(data)}
	}
	*f = flexID(n)
	return nil
}

func (f *flexID) int64() int64 {
	if f == nil {
		return 0
	}
	return int64(*f)
}

func (f *flexID) ptr() *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

type idError struct {
	raw string
}

func (e *idError) Error() string {
	return fmt.Sprintf("identifier must be an integer, got %s", e.raw)
}

// decodeRecord unmarshals data into v and converts every decoding failure
// into a *ValidationError naming record.
func decodeRecord(record string, data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return invalid(record, typeErr.Field, "expected %s, got JSON %s", typeErr.Type, typeErr.Value)
	}
	var idErr *idError
	if errors.As(err, &idErr) {
		return invalid(record, "", "%s", idErr.Error())
	}
	return invalid(record, "", "%v", err)
}

func isNull(data []byte) bool {
	return string(bytes.TrimSpace(data)) == "null"
}

// ProjectRef is the short project reference embedded in schedules,
// sessions and attempts.
type ProjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ProjectRef) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID   *flexID `json:"id"`
		Name string  `json:"name"`
	}
	if err := decodeRecord("ProjectRef", data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return invalid("ProjectRef", "id", "is required")
	}
	*r = ProjectRef{ID: raw.ID.int64(), Name: raw.Name}
	return nil
}

// WorkflowRef is the short workflow reference embedded in schedules,
// sessions and attempts.
type WorkflowRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *WorkflowRef) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var raw struct {
		ID   *flexID `json:"id"`
		Name string  `json:"name"`
	}
	if err := decodeRecord("WorkflowRef", data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return invalid("WorkflowRef", "id", "is required")
	}
	*r = WorkflowRef{ID: raw.ID.int64(), Name: raw.Name}
	return nil
}
