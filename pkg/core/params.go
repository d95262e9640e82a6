package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered collection of query parameters. The signed payload is
// the encoded query exactly as it goes on the wire, so encoding preserves
// insertion order instead of sorting keys the way url.Values.Encode does.
type Params struct {
	pairs []Param
}

// NewParams returns an empty parameter collection.
func NewParams() *Params {
	return &Params{}
}

// Set adds the parameter, or replaces the value in place if the key is already
// present. Replacing keeps the key at its original position so the encoded
// form stays stable.
func (p *Params) Set(key string, value any) *Params {
	formatted := formatParamValue(value)
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			p.pairs[i].Value = formatted
			return p
		}
	}
	p.pairs = append(p.pairs, Param{Key: key, Value: formatted})
	return p
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			return p.pairs[i].Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Del removes key if present. Later parameters shift up one position.
func (p *Params) Del(key string) {
	for i := range p.pairs {
		if p.pairs[i].Key == key {
			p.pairs = append(p.pairs[:i], p.pairs[i+1:]...)
			return
		}
	}
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Pairs returns a copy of the parameters in insertion order.
func (p *Params) Pairs() []Param {
	out := make([]Param, len(p.pairs))
	copy(out, p.pairs)
	return out
}

// Encode returns the URL-encoded query string in insertion order, e.g.
// "symbol=BTCUSDT&timestamp=1000".
func (p *Params) Encode() string {
	if len(p.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.Value))
	}
	return b.String()
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	return &Params{pairs: p.Pairs()}
}

func formatParamValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case apd.Decimal:
		return v.Text('f')
	case *apd.Decimal:
		return v.Text('f')
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
