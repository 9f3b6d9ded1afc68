package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoItemCollection is returned by a store when a query response carries no
// item collection at all. An empty collection is not this error.
var ErrNoItemCollection = errors.New("domain: no item collection")

// Stored attribute names with a typed field on AwardRecord.
const (
	AttrMovieID   = "movieId"
	AttrAwardBody = "awardBody"
	AttrAward     = "award"
	AttrNumAwards = "numAwards"
)

// AwardRecord is one (movie, awarding body, award) association as stored in the
// awards table. Attributes holds every stored attribute that has no typed field,
// including an award or numAwards value whose stored type does not fit the
// typed field; the typed field is then nil.
type AwardRecord struct {
	MovieID    int
	AwardBody  string
	Award      *string
	NumAwards  *int
	Attributes map[string]any
}

// MeetsMinimum reports whether the record has a numAwards count of at least threshold.
// A record without a count never qualifies.
func (r AwardRecord) MeetsMinimum(threshold int) bool {
	return r.NumAwards != nil && *r.NumAwards >= threshold
}

// MarshalJSON writes the record as a single flat object.
func (r AwardRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attributes)+4)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out[AttrMovieID] = r.MovieID
	out[AttrAwardBody] = r.AwardBody
	if r.Award != nil {
		out[AttrAward] = *r.Award
	}
	if r.NumAwards != nil {
		out[AttrNumAwards] = *r.NumAwards
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *AwardRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("domain: decode award record: %w", err)
	}

	var rec AwardRecord
	if v, ok := raw[AttrMovieID]; ok {
		if err := json.Unmarshal(v, &rec.MovieID); err != nil {
			return fmt.Errorf("domain: decode %s: %w", AttrMovieID, err)
		}
	}
	if v, ok := raw[AttrAwardBody]; ok {
		if err := json.Unmarshal(v, &rec.AwardBody); err != nil {
			return fmt.Errorf("domain: decode %s: %w", AttrAwardBody, err)
		}
	}
	if v, ok := raw[AttrAward]; ok {
		var award *string
		if err := json.Unmarshal(v, &award); err == nil && award != nil {
			rec.Award = award
			delete(raw, AttrAward)
		}
	}
	if v, ok := raw[AttrNumAwards]; ok {
		var n *int
		if err := json.Unmarshal(v, &n); err == nil && n != nil {
			rec.NumAwards = n
			delete(raw, AttrNumAwards)
		}
	}

	for k, v := range raw {
		if k == AttrMovieID || k == AttrAwardBody {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("domain: decode %s: %w", k, err)
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]any)
		}
		rec.Attributes[k] = val
	}

	*r = rec
	return nil
}
