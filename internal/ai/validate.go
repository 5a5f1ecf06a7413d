package ai

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStructuralMismatch marks a translation whose shape diverged from the
// source document. Syntactically valid JSON is not enough: a dropped field or
// a shortened array is a failed translation.
var ErrStructuralMismatch = errors.New("structural mismatch between source and translation")

// ValidateStructure recursively compares the key sets and array lengths of
// the source and translated documents. Text values are expected to differ;
// shape is not.
func ValidateStructure(source, translated json.RawMessage) error {
	var src, dst interface{}
	if err := json.Unmarshal(source, &src); err != nil {
		return fmt.Errorf("source is not valid JSON: %w", err)
	}
	if err := json.Unmarshal(translated, &dst); err != nil {
		return fmt.Errorf("translation is not valid JSON: %w", err)
	}
	return compareShape(src, dst, "$")
}

func compareShape(src, dst interface{}, path string) error {
	switch s := src.(type) {
	case map[string]interface{}:
		d, ok := dst.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: expected object at %s", ErrStructuralMismatch, path)
		}
		if len(s) != len(d) {
			return fmt.Errorf("%w: object at %s has %d keys, expected %d", ErrStructuralMismatch, path, len(d), len(s))
		}
		for key, sv := range s {
			dv, exists := d[key]
			if !exists {
				return fmt.Errorf("%w: key %q missing at %s", ErrStructuralMismatch, key, path)
			}
			if err := compareShape(sv, dv, path+"."+key); err != nil {
				return err
			}
		}
		return nil

	case []interface{}:
		d, ok := dst.([]interface{})
		if !ok {
			return fmt.Errorf("%w: expected array at %s", ErrStructuralMismatch, path)
		}
		if len(s) != len(d) {
			return fmt.Errorf("%w: array at %s has %d elements, expected %d", ErrStructuralMismatch, path, len(d), len(s))
		}
		for i := range s {
			if err := compareShape(s[i], d[i], fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	default:
		// Scalars: values may change with translation, types should not
		// (strings stay strings, numbers stay numbers, null stays null).
		if !sameScalarKind(src, dst) {
			return fmt.Errorf("%w: value kind changed at %s", ErrStructuralMismatch, path)
		}
		return nil
	}
}

func sameScalarKind(src, dst interface{}) bool {
	switch src.(type) {
	case string:
		_, ok := dst.(string)
		return ok
	case float64:
		_, ok := dst.(float64)
		return ok
	case bool:
		_, ok := dst.(bool)
		return ok
	case nil:
		return dst == nil
	default:
		return false
	}
}
