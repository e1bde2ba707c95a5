package session

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// StorageKey is the single well-known slot the persisted session record
// lives under. Absence or a past tokenExpiry is equivalent to "no session".
const StorageKey = "docuvault.session"

type identityRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (r identityRecord) identity() Identity {
	return Identity{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Role:       Role(r.Role),
		Department: r.Department,
	}
}

func identityToRecord(id Identity) identityRecord {
	return identityRecord{
		ID:         id.ID,
		Name:       id.Name,
		Email:      id.Email,
		Role:       string(id.Role),
		Department: id.Department,
	}
}

// persistedRecord is the serialized session layout: identity, token and
// expiry as epoch milliseconds.
type persistedRecord struct {
	User        identityRecord `json:"user"`
	Token       string         `json:"token"`
	TokenExpiry int64          `json:"tokenExpiry"`
}

func encodeRecord(s *Session) ([]byte, error) {
	record := persistedRecord{
		User:        identityToRecord(s.Identity),
		Token:       s.Token,
		TokenExpiry: s.Expiry.UnixMilli(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "[encodeRecord] marshal")
	}
	return data, nil
}

func decodeRecord(data []byte) (*Session, error) {
	var record persistedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "[decodeRecord] unmarshal")
	}
	if record.Token == "" {
		return nil, errors.New("[decodeRecord] record has no token")
	}
	return &Session{
		Identity: record.User.identity(),
		Token:    record.Token,
		Expiry:   time.UnixMilli(record.TokenExpiry),
	}, nil
}
