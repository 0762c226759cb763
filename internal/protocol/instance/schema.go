package instance

import "strings"

// FieldSpec declares a known key within a record.
type FieldSpec struct {
	Key      string
	Required bool
}

// Schema defines required and known keys for a record.
type Schema struct {
	Fields []FieldSpec
}

// DefaultSchema matches what browsers send for every instance.
func DefaultSchema() Schema {
	return Schema{
		Fields: []FieldSpec{
			{Key: KeyServerName, Required: true},
			{Key: KeyInstanceName, Required: true},
			{Key: KeyIsClustered},
			{Key: KeyVersion},
			{Key: KeyTCP},
			{Key: KeyNamedPipe},
		},
	}
}

// Validate checks rec against schema. Unknown keys are returned, not rejected.
func Validate(rec Record, schema Schema) ([]Pair, error) {
	for _, spec := range schema.Fields {
		if !spec.Required {
			continue
		}
		if _, ok := rec.Get(spec.Key); !ok {
			return nil, MissingFieldError{Key: spec.Key}
		}
	}
	var unknown []Pair
	for _, p := range rec.Pairs {
		if !schema.knows(p.Key) {
			unknown = append(unknown, p)
		}
	}
	if _, _, err := rec.TCPPort(); err != nil {
		return nil, err
	}
	return unknown, nil
}

func (s Schema) knows(key string) bool {
	for _, spec := range s.Fields {
		if strings.EqualFold(spec.Key, key) {
			return true
		}
	}
	return false
}
