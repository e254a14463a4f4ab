package inference

import "fmt"

// CategoryEncoder maps a categorical label to the integer code it was given
// at fit time: the label's position in the fitted class list.
type CategoryEncoder struct {
	field   string
	classes []string
	codes   map[string]int
}

// NewCategoryEncoder builds an encoder for field from its fitted classes.
// Classes must be non-empty and unique.
func NewCategoryEncoder(field string, classes []string) (*CategoryEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder for %s has no classes", field)
	}
	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := codes[c]; dup {
			return nil, fmt.Errorf("encoder for %s has duplicate class %q", field, c)
		}
		codes[c] = i
	}
	return &CategoryEncoder{
		field:   field,
		classes: append([]string(nil), classes...),
		codes:   codes,
	}, nil
}

func (e *CategoryEncoder) Field() string {
	return e.field
}

// Classes returns a copy of the fitted labels in code order.
func (e *CategoryEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

func (e *CategoryEncoder) Encode(label string) (int, error) {
	code, ok := e.codes[label]
	if !ok {
		return 0, &UnknownCategoryError{Field: e.field, Label: label, Known: e.Classes()}
	}
	return code, nil
}
