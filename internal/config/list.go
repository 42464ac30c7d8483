package config

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// StringList is a settings value given either as a comma separated string,
// a JSON array literal or a sequence.
type StringList []string

var stringListType = reflect.TypeOf(StringList(nil))

// ParseList normalizes v to a list of strings.
//
// A string not starting with "[" is split on "," and every element is trimmed;
// empty elements are dropped so an empty string yields an empty list.
// A string starting with "[" is decoded as a JSON array of strings.
// Sequences are passed through. Anything else returns ErrInvalidList.
func ParseList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		if strings.HasPrefix(strings.TrimSpace(val), "[") {
			var out []string
			if err := json.Unmarshal([]byte(val), &out); err != nil {
				return nil, errors.Wrapf(ErrInvalidList, "%q: %v", val, err)
			}

			return out, nil
		}

		out := []string{}

		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}

		return out, nil
	case StringList:
		return val, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))

		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidList, "element %v (%T) is not a string", item, item)
			}

			out = append(out, s)
		}

		return out, nil
	default:
		return nil, errors.Wrapf(ErrInvalidList, "unsupported type %T", v)
	}
}

// stringListHook decodes any raw value into a StringList via ParseList.
func stringListHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != stringListType {
			return data, nil
		}

		out, err := ParseList(data)
		if err != nil {
			return nil, err
		}

		return StringList(out), nil
	}
}
