package backingstore

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ resolver.Strategy = (*Translator)(nil)

// Translator maps a generic CRUD descriptor onto the structured store's
// select/insert/update/delete operations and normalizes the outcome into the
// shape the primary tier would have produced. Upstream code stays
// tier-agnostic; only the Result's Tier field betrays the origin.
type Translator struct {
	store       Store
	collections map[string]struct{}
	logger      zerolog.Logger
}

// TranslatorOption modifies a Translator instance.
type TranslatorOption func(*Translator)

// WithTranslatorLogger sets the translator logger.
func WithTranslatorLogger(logger zerolog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator builds a translator over the store, restricted to the given
// collection names.
func NewTranslator(store Store, collections []string, options ...TranslatorOption) (*Translator, error) {
	if store == nil {
		return nil, errors.New("[NewTranslator] store is required")
	}
	known := make(map[string]struct{}, len(collections))
	for _, collection := range collections {
		known[collection] = struct{}{}
	}

	t := &Translator{
		store:       store,
		collections: known,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Name implements resolver.Strategy.
func (t *Translator) Name() string {
	return string(resolver.TierBackingStore)
}

// Resolve implements resolver.Strategy. Method-to-operation mapping is
// fixed: list→select, get→select-by-id, create→insert, update→update-by-id,
// delete→delete-by-id.
func (t *Translator) Resolve(ctx context.Context, d resolver.Descriptor) (*resolver.Result, error) {
	if _, ok := t.collections[d.Collection]; !ok {
		return nil, resolver.NewTranslation(errors.Wrap(ErrUnknownCollection, d.Collection))
	}

	switch d.Method {
	case resolver.MethodList:
		records, err := t.store.Select(ctx, d.Collection)
		if err != nil {
			return nil, resolver.NewTranslation(errors.Wrapf(err, "[Translator.Resolve] select %s", d.Collection))
		}
		return durableResult(records, http.StatusOK), nil

	case resolver.MethodGet:
		if d.ID == "" {
			return nil, resolver.NewTranslation(errors.Errorf("[Translator.Resolve] get %s requires an id", d.Collection))
		}
		record, err := t.store.GetByID(ctx, d.Collection, d.ID)
		if errors.Is(err, ErrNotFound) {
			return nil, resolver.NewNotFound(err)
		}
		if err != nil {
			return nil, resolver.NewTranslation(errors.Wrapf(err, "[Translator.Resolve] get %s/%s", d.Collection, d.ID))
		}
		return durableResult(record, http.StatusOK), nil

	case resolver.MethodCreate:
		doc, err := documentBody(d.Body)
		if err != nil {
			return nil, resolver.NewTranslation(err)
		}
		record, err := t.store.Insert(ctx, d.Collection, doc)
		if err != nil {
			return nil, resolver.NewTranslation(errors.Wrapf(err, "[Translator.Resolve] insert %s", d.Collection))
		}
		t.logger.Debug().Str("collection", d.Collection).Msg("insert served by backing store")
		return durableResult(record, http.StatusCreated), nil

	case resolver.MethodUpdate:
		if d.ID == "" {
			return nil, resolver.NewTranslation(errors.Errorf("[Translator.Resolve] update %s requires an id", d.Collection))
		}
		doc, err := documentBody(d.Body)
		if err != nil {
			return nil, resolver.NewTranslation(err)
		}
		record, err := t.store.Update(ctx, d.Collection, d.ID, doc)
		if errors.Is(err, ErrNotFound) {
			return nil, resolver.NewNotFound(err)
		}
		if err != nil {
			return nil, resolver.NewTranslation(errors.Wrapf(err, "[Translator.Resolve] update %s/%s", d.Collection, d.ID))
		}
		t.logger.Debug().Str("collection", d.Collection).Str("id", d.ID).Msg("update served by backing store")
		return durableResult(record, http.StatusOK), nil

	case resolver.MethodDelete:
		if d.ID == "" {
			return nil, resolver.NewTranslation(errors.Errorf("[Translator.Resolve] delete %s requires an id", d.Collection))
		}
		err := t.store.DeleteByID(ctx, d.Collection, d.ID)
		if errors.Is(err, ErrNotFound) {
			return nil, resolver.NewNotFound(err)
		}
		if err != nil {
			return nil, resolver.NewTranslation(errors.Wrapf(err, "[Translator.Resolve] delete %s/%s", d.Collection, d.ID))
		}
		return durableResult(nil, http.StatusNoContent), nil

	default:
		return nil, resolver.NewTranslation(errors.Errorf("[Translator.Resolve] unsupported method %q", d.Method))
	}
}

func durableResult(data any, status int) *resolver.Result {
	return &resolver.Result{
		Data:    data,
		Status:  status,
		Tier:    resolver.TierBackingStore,
		Durable: true,
	}
}

// documentBody coerces a descriptor body into a schemaless document,
// round-tripping structs through JSON so field names match the wire shape.
func documentBody(body any) (map[string]any, error) {
	if body == nil {
		return nil, errors.New("[documentBody] body is required")
	}
	if doc, ok := body.(map[string]any); ok {
		return doc, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "[documentBody] marshal")
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, errors.Wrap(err, "[documentBody] unmarshal")
	}
	return doc, nil
}
