package models

import (
	"encoding/json"
	"strconv"
)

// OptionalID distinguishes an absent JSON field from an explicit null.
// Set is true when the field was present; Valid is true when it held an id.
type OptionalID struct {
	Set   bool
	Valid bool
	ID    int64
}

// SomeID returns a present, non-null OptionalID.
func SomeID(id int64) OptionalID {
	return OptionalID{Set: true, Valid: true, ID: id}
}

// NullID returns a present OptionalID holding null.
func NullID() OptionalID {
	return OptionalID{Set: true}
}

// OptionalFrom converts a nullable id into a present OptionalID.
func OptionalFrom(id *int64) OptionalID {
	if id == nil {
		return NullID()
	}
	return SomeID(*id)
}

// Ptr returns the id as a pointer, nil when null or absent.
func (o OptionalID) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	id := o.ID
	return &id
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.ID, 10)), nil
}

// IsZero reports an absent field, so omitzero drops it when encoding.
func (o OptionalID) IsZero() bool { return !o.Set }

// UnmarshalJSON is only called when the field is present, including for null.
// Numeric strings are accepted.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		o.ID = 0
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	id, err := n.Int64()
	if err != nil {
		return err
	}
	o.Valid = true
	o.ID = id
	return nil
}
