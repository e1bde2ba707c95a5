package seed

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrRecordNotFound    = errors.New("record not found")
)

// OpKind identifies a mutation applied to an in-process dataset copy.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Op describes a single mutation against a synthetic collection.
type Op struct {
	Kind OpKind
	ID   string
	Doc  map[string]any
}

// Account is a seeded identity that can be verified offline.
type Account struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department string
}

// Provider serves the last-resort synthetic datasets. All state is held
// in process memory and is lost on restart; mutations only exist to keep
// a degraded UI coherent, never as a source of truth.
type Provider struct {
	logger      zerolog.Logger
	lock        sync.RWMutex
	collections map[string][]map[string]any
	versions    map[string]int64
	accounts    map[string]seedAccount
}

type seedAccount struct {
	account      Account
	passwordHash []byte
}

// ProviderOption modifies a Provider instance.
type ProviderOption func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider builds a provider preloaded with the demo datasets.
func NewProvider(options ...ProviderOption) *Provider {
	p := &Provider{
		logger:      zerolog.Nop(),
		collections: seedCollections(),
		versions:    make(map[string]int64),
		accounts:    seedAccounts(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Known reports whether a collection has a synthetic dataset.
func (p *Provider) Known(collection string) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()
	_, ok := p.collections[collection]
	return ok
}

// Collections lists the collections with synthetic datasets.
func (p *Provider) Collections() []string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	names := make([]string, 0, len(p.collections))
	for name := range p.collections {
		names = append(names, name)
	}
	return names
}

// Version returns the mutation counter for a collection. It starts at zero
// and increments once per applied Op.
func (p *Provider) Version(collection string) int64 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.versions[collection]
}

// Seed returns a deep copy of the current dataset for the collection.
func (p *Provider) Seed(collection string) ([]map[string]any, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	records, ok := p.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	return copyRecords(records), nil
}

// Get returns a deep copy of a single record by id.
func (p *Provider) Get(collection, id string) (map[string]any, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	records, ok := p.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}
	for _, record := range records {
		if recordID(record) == id {
			return copyRecord(record), nil
		}
	}
	return nil, errors.Wrapf(ErrRecordNotFound, "%s/%s", collection, id)
}

// Mutate applies an Op to the in-process dataset copy and returns the
// resulting record (nil for deletes).
func (p *Provider) Mutate(collection string, op Op) (map[string]any, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	records, ok := p.collections[collection]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCollection, collection)
	}

	switch op.Kind {
	case OpCreate:
		doc := copyRecord(op.Doc)
		if recordID(doc) == "" {
			doc["id"] = nextSyntheticID(collection, len(records))
		}
		p.collections[collection] = append(records, doc)
		p.versions[collection]++
		p.logger.Debug().Str("collection", collection).Msg("synthetic create applied")
		return copyRecord(doc), nil
	case OpUpdate:
		for i, record := range records {
			if recordID(record) != op.ID {
				continue
			}
			updated := copyRecord(record)
			for k, v := range op.Doc {
				updated[k] = v
			}
			updated["id"] = op.ID
			records[i] = updated
			p.versions[collection]++
			p.logger.Debug().Str("collection", collection).Str("id", op.ID).Msg("synthetic update applied")
			return copyRecord(updated), nil
		}
		return nil, errors.Wrapf(ErrRecordNotFound, "%s/%s", collection, op.ID)
	case OpDelete:
		for i, record := range records {
			if recordID(record) != op.ID {
				continue
			}
			p.collections[collection] = append(records[:i], records[i+1:]...)
			p.versions[collection]++
			p.logger.Debug().Str("collection", collection).Str("id", op.ID).Msg("synthetic delete applied")
			return nil, nil
		}
		return nil, errors.Wrapf(ErrRecordNotFound, "%s/%s", collection, op.ID)
	default:
		return nil, errors.Errorf("[Provider.Mutate] unsupported op kind %q", op.Kind)
	}
}

// Authenticate verifies an email/secret pair against the seeded accounts.
// Callers must only reach for this when the primary endpoint could not be
// contacted at all; an explicit remote rejection is never retried here.
func (p *Provider) Authenticate(email, secret string) (*Account, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	sa, ok := p.accounts[email]
	if !ok {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword(sa.passwordHash, []byte(secret)); err != nil {
		return nil, false
	}
	account := sa.account
	return &account, true
}

func recordID(record map[string]any) string {
	id, _ := record["id"].(string)
	return id
}

func copyRecords(records []map[string]any) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, record := range records {
		out[i] = copyRecord(record)
	}
	return out
}

func copyRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return copyRecord(value)
	case []any:
		items := make([]any, len(value))
		for i, item := range value {
			items[i] = copyValue(item)
		}
		return items
	default:
		return v
	}
}
