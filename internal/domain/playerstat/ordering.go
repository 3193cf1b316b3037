package playerstat

import (
	"cmp"
	"fmt"
	"strings"
)

// OrderTerm is one key of a composite sort.
type OrderTerm struct {
	Field Field
	Desc  bool
}

// Ordering is a composite sort key applied in order. The zero value keeps
// natural (insertion) order.
type Ordering []OrderTerm

// ParseOrdering reads a comma-separated list of field names where a leading
// '-' means descending, e.g. "position,-home_run". Blank terms are skipped and
// a repeated field keeps its first position.
func ParseOrdering(raw string) (Ordering, error) {
	var out Ordering
	seen := make(map[Field]struct{})
	for _, part := range strings.Split(raw, ",") {
		term := strings.TrimSpace(part)
		if term == "" {
			continue
		}

		desc := false
		if strings.HasPrefix(term, "-") {
			desc = true
			term = strings.TrimSpace(term[1:])
		}

		field := Field(term)
		if _, ok := fieldKinds[field]; !ok && field != FieldID {
			return nil, fmt.Errorf("unknown ordering field %q", term)
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, OrderTerm{Field: field, Desc: desc})
	}
	return out, nil
}

func (o Ordering) String() string {
	parts := make([]string, 0, len(o))
	for _, term := range o {
		if term.Desc {
			parts = append(parts, "-"+string(term.Field))
			continue
		}
		parts = append(parts, string(term.Field))
	}
	return strings.Join(parts, ",")
}

// Compare orders a and b by the composite key and returns 0 on a full tie.
func (o Ordering) Compare(a, b Record) int {
	for _, term := range o {
		av, _ := a.Value(term.Field)
		bv, _ := b.Value(term.Field)

		c := compareValues(av, bv)
		if term.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return cmp.Compare(av, bv)
	case int64:
		bv, _ := b.(int64)
		return cmp.Compare(av, bv)
	case float64:
		bv, _ := b.(float64)
		return cmp.Compare(av, bv)
	default:
		return 0
	}
}
