package validation

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

// OptionalString distinguishes an omitted JSON key from an explicit null.
// UnmarshalJSON only runs for keys present in the payload, so Set is true
// exactly when the key appeared; Value stays nil for an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// NullableString carries a validated nullable field through to the store:
// Set=false leaves the column unchanged, Set=true with a nil Value clears it.
type NullableString struct {
	Set   bool
	Value *string
}

type NullableTime struct {
	Set   bool
	Value *time.Time
}

type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}
