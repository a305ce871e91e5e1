package services

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Param is one stringified request parameter used in cache key derivation.
type Param struct {
	Name  string
	Value string
}

func ParamString(name, v string) Param { return Param{Name: name, Value: v} }

func ParamBool(name string, v bool) Param {
	return Param{Name: name, Value: strconv.FormatBool(v)}
}

func ParamInt(name string, v int) Param {
	return Param{Name: name, Value: strconv.Itoa(v)}
}

func ParamFloat(name string, v float64) Param {
	return Param{Name: name, Value: strconv.FormatFloat(v, 'g', -1, 64)}
}

func ParamList(name string, vs []string) Param {
	return Param{Name: name, Value: strings.Join(vs, ",")}
}

// DeriveKey builds a deterministic cache key from namespace, endpoint
// identity and the request parameters. Parameters are sorted by name
// before hashing, so call-site ordering never fragments the cache.
func DeriveKey(namespace, endpoint string, params []Param) string {
	sorted := make([]Param, len(params))
	copy(sorted, params)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for i, p := range sorted {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	sum := sha1.Sum([]byte(b.String()))
	return fmt.Sprintf("%s:%s:%s", namespace, endpoint, hex.EncodeToString(sum[:8]))
}
