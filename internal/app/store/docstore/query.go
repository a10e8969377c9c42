// internal/app/store/docstore/query.go
package docstore

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Op is a comparison operator in a Where condition.
type Op string

const (
	Eq    Op = "=="
	Ne    Op = "!="
	Lt    Op = "<"
	Lte   Op = "<="
	Gt    Op = ">"
	Gte   Op = ">="
	In    Op = "in"
	NotIn Op = "not-in"
)

// Cond is one field condition. Field may be a dotted path.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Query selects documents in a collection. All conditions must match.
// Without OrderBy, results come back in insertion order.
type Query struct {
	Where   []Cond
	OrderBy string
	Desc    bool
	Limit   int
}

// Where builds a condition.
func Where(field string, op Op, value any) Cond {
	return Cond{Field: field, Op: op, Value: value}
}

// All matches every document in a collection.
var All = Query{}

// matches evaluates q's conditions against a raw document. It is the
// reference semantics for backends that cannot push filters down.
func (q Query) matches(doc bson.Raw) (bool, error) {
	for _, c := range q.Where {
		ok, err := c.matches(doc)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c Cond) matches(doc bson.Raw) (bool, error) {
	field := lookup(doc, c.Field)
	want, err := toRawValue(c.Value)
	if err != nil {
		return false, fmt.Errorf("condition on %q: %w", c.Field, err)
	}
	switch c.Op {
	case Eq:
		return compare(field, want) == 0, nil
	case Ne:
		return compare(field, want) != 0, nil
	case Lt, Lte, Gt, Gte:
		// Ordering comparisons never match a missing field.
		if field.Type == 0 || field.Type == bsontype.Null {
			return false, nil
		}
		if !sameKind(field, want) {
			return false, nil
		}
		cmp := compare(field, want)
		switch c.Op {
		case Lt:
			return cmp < 0, nil
		case Lte:
			return cmp <= 0, nil
		case Gt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case In, NotIn:
		if want.Type != bsontype.Array {
			return false, fmt.Errorf("condition on %q: %s needs a slice value", c.Field, c.Op)
		}
		vals, err := want.Array().Values()
		if err != nil {
			return false, err
		}
		found := false
		for _, v := range vals {
			if compare(field, v) == 0 {
				found = true
				break
			}
		}
		if c.Op == In {
			return found, nil
		}
		return !found, nil
	default:
		return false, fmt.Errorf("unsupported operator %q", c.Op)
	}
}

// apply filters, orders and limits raws in place.
func (q Query) apply(raws []Raw) ([]Raw, error) {
	out := raws[:0]
	for _, r := range raws {
		ok, err := q.matches(r.Data)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			cmp := compare(lookup(out[i].Data, q.OrderBy), lookup(out[j].Data, q.OrderBy))
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func lookup(doc bson.Raw, path string) bson.RawValue {
	v, err := doc.LookupErr(strings.Split(path, ".")...)
	if err != nil {
		return bson.RawValue{}
	}
	return v
}

func toRawValue(v any) (bson.RawValue, error) {
	if t, ok := v.(time.Time); ok {
		v = t.UTC()
	}
	typ, data, err := bson.MarshalValue(v)
	if err != nil {
		return bson.RawValue{}, err
	}
	return bson.RawValue{Type: typ, Value: data}, nil
}

func isNumber(t bsontype.Type) bool {
	return t == bsontype.Int32 || t == bsontype.Int64 || t == bsontype.Double
}

func sameKind(a, b bson.RawValue) bool {
	if isNumber(a.Type) && isNumber(b.Type) {
		return true
	}
	return a.Type == b.Type
}

func asFloat(v bson.RawValue) float64 {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32())
	case bsontype.Int64:
		return float64(v.Int64())
	case bsontype.Double:
		return v.Double()
	}
	return 0
}

// typeRank orders values of different types: missing/null first,
// then numbers, strings, booleans, dates, everything else.
func typeRank(t bsontype.Type) int {
	switch {
	case t == 0 || t == bsontype.Null:
		return 0
	case isNumber(t):
		return 1
	case t == bsontype.String:
		return 2
	case t == bsontype.Boolean:
		return 3
	case t == bsontype.DateTime:
		return 4
	default:
		return 5
	}
}

func compare(a, b bson.RawValue) int {
	ra, rb := typeRank(a.Type), typeRank(b.Type)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, fb := asFloat(a), asFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.StringValue(), b.StringValue())
	case 3:
		ba, bb := a.Boolean(), b.Boolean()
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 4:
		da, db := a.DateTime(), b.DateTime()
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	default:
		return bytes.Compare(a.Value, b.Value)
	}
}
