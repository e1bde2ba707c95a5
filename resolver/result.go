package resolver

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Tier identifies which fallback tier produced a result.
type Tier string

const (
	TierPrimary      Tier = "primary"
	TierBackingStore Tier = "backing-store"
	TierSynthetic    Tier = "synthetic"
)

// Result is the uniform success shape produced by any tier. Durable is false
// only for synthetic answers; callers must treat those as ephemeral.
type Result struct {
	Data    any
	Status  int
	Tier    Tier
	Durable bool
}

// Decode unmarshals the result payload into v, regardless of which tier
// produced it. A nil payload (e.g. a 204 answer) leaves v untouched.
func (r *Result) Decode(v any) error {
	if r.Data == nil {
		return nil
	}
	raw, ok := r.Data.(json.RawMessage)
	if !ok {
		encoded, err := json.Marshal(r.Data)
		if err != nil {
			return errors.Wrap(err, "[Result.Decode] marshal")
		}
		raw = encoded
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "[Result.Decode] unmarshal")
	}
	return nil
}
