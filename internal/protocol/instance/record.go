package instance

import (
	"strconv"
	"strings"
)

// Well-known record keys.
const (
	KeyServerName   = "ServerName"
	KeyInstanceName = "InstanceName"
	KeyIsClustered  = "IsClustered"
	KeyVersion      = "Version"
	KeyTCP          = "tcp"
	KeyNamedPipe    = "np"
)

// Pair is one key/value token pair in payload order.
type Pair struct {
	Key   string
	Value string
}

// Record is one instance description.
type Record struct {
	Pairs []Pair
}

// Get returns the first value stored under key. Keys compare case-insensitively.
func (r Record) Get(key string) (string, bool) {
	for _, p := range r.Pairs {
		if strings.EqualFold(p.Key, key) {
			return p.Value, true
		}
	}
	return "", false
}

func (r Record) value(key string) string {
	v, _ := r.Get(key)
	return v
}

func (r Record) ServerName() string   { return r.value(KeyServerName) }
func (r Record) InstanceName() string { return r.value(KeyInstanceName) }
func (r Record) Version() string      { return r.value(KeyVersion) }
func (r Record) NamedPipe() string    { return r.value(KeyNamedPipe) }

// IsClustered reports whether the browser flagged the instance as clustered.
func (r Record) IsClustered() bool {
	return strings.EqualFold(r.value(KeyIsClustered), "yes")
}

// TCPPort returns the advertised tcp port. ok is false when the instance does
// not listen on tcp.
func (r Record) TCPPort() (port uint16, ok bool, err error) {
	raw, found := r.Get(KeyTCP)
	if !found {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return 0, false, ErrInvalidPort
	}
	return uint16(v), true, nil
}

// String renders the record back into payload form.
func (r Record) String() string {
	var b strings.Builder
	for _, p := range r.Pairs {
		b.WriteString(p.Key)
		b.WriteByte(';')
		b.WriteString(p.Value)
		b.WriteByte(';')
	}
	b.WriteByte(';')
	return b.String()
}

// ParseRecords splits payload text into records.
func ParseRecords(text string) ([]Record, error) {
	if text == "" {
		return nil, nil
	}
	if !strings.HasSuffix(text, ";;") {
		return nil, ErrUnterminated
	}
	tokens := strings.Split(text, ";")
	records := make([]Record, 0, 1)
	var cur Record
	for i := 0; i < len(tokens); {
		key := tokens[i]
		if key == "" {
			if len(cur.Pairs) > 0 {
				records = append(records, cur)
				cur = Record{}
			}
			i++
			continue
		}
		// A key directly followed by the record terminator has no value.
		if i+1 >= len(tokens) || (tokens[i+1] == "" && (i+2 >= len(tokens) || tokens[i+2] == "")) {
			return nil, ErrOddTokens
		}
		cur.Pairs = append(cur.Pairs, Pair{Key: key, Value: tokens[i+1]})
		i += 2
	}
	return records, nil
}

// FindInstance returns the record whose InstanceName matches name.
func FindInstance(records []Record, name string) (Record, bool) {
	for _, rec := range records {
		if strings.EqualFold(rec.InstanceName(), name) {
			return rec, true
		}
	}
	return Record{}, false
}
