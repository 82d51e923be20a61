package user

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Profile is a fitness user profile record. ID and CreatedAt are assigned by
// the store on insert.
type Profile struct {
	ID        string
	Name      string
	Email     string
	Age       float64
	Height    float64
	Weight    float64
	Goal      string
	CreatedAt time.Time
}

// Draft carries candidate field values before presence is established.
// A nil pointer means the field was absent from the input.
type Draft struct {
	Name   *string
	Email  *string
	Age    *float64
	Height *float64
	Weight *float64
	Goal   *string
}

// Field names as they appear on the wire.
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldAge    = "age"
	FieldHeight = "height"
	FieldWeight = "weight"
	FieldGoal   = "goal"
)

// Validate reports every missing or non-conforming field of the draft.
func (d Draft) Validate() error {
	verr := &ValidationError{}
	checkText(verr, FieldName, d.Name)
	checkText(verr, FieldEmail, d.Email)
	checkNumber(verr, FieldAge, d.Age)
	checkNumber(verr, FieldHeight, d.Height)
	checkNumber(verr, FieldWeight, d.Weight)
	checkText(verr, FieldGoal, d.Goal)
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Profile converts a validated draft; call Validate first.
func (d Draft) Profile() Profile {
	return Profile{
		Name:   deref(d.Name),
		Email:  deref(d.Email),
		Age:    deref(d.Age),
		Height: deref(d.Height),
		Weight: deref(d.Weight),
		Goal:   deref(d.Goal),
	}
}

// Validate enforces presence on an already materialized profile. Text is
// present when non-empty, whitespace included. Numeric zero is a legitimate
// value so only finiteness is checked for numbers.
func (p Profile) Validate() error {
	return Draft{
		Name:   &p.Name,
		Email:  &p.Email,
		Age:    &p.Age,
		Height: &p.Height,
		Weight: &p.Weight,
		Goal:   &p.Goal,
	}.Validate()
}

func checkText(verr *ValidationError, field string, v *string) {
	if v == nil || *v == "" {
		verr.Add(field, ReasonRequired)
	}
}

func checkNumber(verr *ValidationError, field string, v *float64) {
	switch {
	case v == nil:
		verr.Add(field, ReasonRequired)
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		verr.Add(field, ReasonNotNumber)
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

const (
	ReasonRequired  = "required"
	ReasonNotNumber = "must be a finite number"
	ReasonWrongType = "wrong type"
)

// ValidationError lists failing fields keyed by wire name.
type ValidationError struct {
	Fields map[string]string
}

// Add records a failing field; later reasons for the same field win.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = reason
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "user validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "user validation failed: " + strings.Join(parts, ", ")
}
