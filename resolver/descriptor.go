package resolver

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Method is the normalized CRUD operation derived from an HTTP verb and path.
type Method string

const (
	MethodList   Method = "list"
	MethodGet    Method = "get"
	MethodCreate Method = "create"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
)

// ReadShaped reports whether the method only reads data. Only read-shaped
// descriptors may be answered from the synthetic datasets.
func (m Method) ReadShaped() bool {
	return m == MethodList || m == MethodGet
}

// Descriptor is the normalized representation of a requested data operation.
// Verb and Path are kept verbatim for the primary tier; Collection, ID and
// Method drive the lower tiers. A non-empty Action marks an action sub-path
// (e.g. POST /documents/D1/approve) which only the primary tier can serve.
type Descriptor struct {
	Collection string
	Method     Method
	ID         string
	Action     string
	Verb       string
	Path       string
	Body       any
	Token      string
}

// ParseDescriptor derives a Descriptor from an HTTP-like verb and a
// path-like string: first segment names the collection, second the id.
func ParseDescriptor(verb, path string) (Descriptor, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Descriptor{}, errors.Errorf("[ParseDescriptor] empty path %q", path)
	}
	if len(segments) > 3 {
		return Descriptor{}, errors.Errorf("[ParseDescriptor] path %q has too many segments", path)
	}

	d := Descriptor{
		Collection: segments[0],
		Verb:       strings.ToUpper(verb),
		Path:       "/" + strings.Join(segments, "/"),
	}

	switch d.Verb {
	case http.MethodGet:
		switch len(segments) {
		case 1:
			d.Method = MethodList
		case 2:
			d.Method = MethodGet
			d.ID = segments[1]
		default:
			d.Method = MethodGet
			d.ID = segments[1]
			d.Action = segments[2]
		}
	case http.MethodPost:
		switch len(segments) {
		case 1:
			d.Method = MethodCreate
		case 2:
			// POST on a sub-path carries no record id, it is an action
			// on the collection itself (e.g. /auth/login).
			d.Method = MethodCreate
			d.Action = segments[1]
		default:
			d.Method = MethodCreate
			d.ID = segments[1]
			d.Action = segments[2]
		}
	case http.MethodPut:
		if len(segments) < 2 {
			return Descriptor{}, errors.Errorf("[ParseDescriptor] %s %q requires an id segment", d.Verb, path)
		}
		d.Method = MethodUpdate
		d.ID = segments[1]
		if len(segments) == 3 {
			d.Action = segments[2]
		}
	case http.MethodDelete:
		if len(segments) < 2 {
			return Descriptor{}, errors.Errorf("[ParseDescriptor] %s %q requires an id segment", d.Verb, path)
		}
		d.Method = MethodDelete
		d.ID = segments[1]
		if len(segments) == 3 {
			d.Action = segments[2]
		}
	default:
		return Descriptor{}, errors.Errorf("[ParseDescriptor] unsupported verb %q", verb)
	}

	return d, nil
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}
