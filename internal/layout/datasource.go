package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDataSource decodes the loosely typed dataSource object found in a
// layout row. Missing or mistyped optional fields fall back to their
// defaults; only a non-object value is an error.
func ParseDataSource(raw any) (DataSource, error) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return DataSource{}, fmt.Errorf("%w: got %T", ErrMalformedDataSource, raw)
	}

	ds := DataSource{
		Type:  KindUnknown,
		Sort:  SortRecent,
		Limit: DefaultLimit,
	}

	if typ, ok := fields["type"].(string); ok {
		ds.RawType = typ
		ds.Type = ParseKind(typ)
	}
	ds.PostIDs, ds.RestrictPostIDs = idList(fields["postIds"])
	ds.CategoryIDs, ds.RestrictCategoryIDs = idList(fields["categoryIds"])

	if filters, ok := fields["filters"].(map[string]any); ok {
		if lang, ok := filters["lang"].(string); ok {
			ds.Filters.Lang = strings.TrimSpace(lang)
		}
	}
	if sort, ok := fields["sort"].(string); ok {
		ds.Sort = ParseSort(sort)
	}
	if limit, ok := positiveInt(fields["limit"]); ok {
		ds.Limit = limit
	}
	return ds, nil
}

// idList keeps the string and number entries of an array. A non-empty array
// restricts the query even when no entry survives; anything else, including
// an empty array, means "no id restriction".
func idList(raw any) ([]string, bool) {
	values, ok := raw.([]any)
	if !ok || len(values) == 0 {
		return nil, false
	}
	ids := make([]string, 0, len(values))
	for _, value := range values {
		switch typed := value.(type) {
		case string:
			ids = append(ids, strings.TrimSpace(typed))
		case json.Number:
			ids = append(ids, typed.String())
		case float64:
			ids = append(ids, strconv.FormatFloat(typed, 'f', -1, 64))
		case int:
			ids = append(ids, strconv.Itoa(typed))
		case int64:
			ids = append(ids, strconv.FormatInt(typed, 10))
		}
	}
	return ids, true
}

func positiveInt(raw any) (int, bool) {
	var value float64
	switch typed := raw.(type) {
	case int:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case float64:
		value = typed
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || value < 1 {
		return 0, false
	}
	if value > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(value), true
}
