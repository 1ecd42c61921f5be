package ipn

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const validateCmd = "cmd=_notify-validate"

type field struct {
	Key   string
	Value string
}

// Notification is the IPN payload with PayPal's field order preserved, which
// the verification post-back must repeat.
type Notification struct {
	fields []field
	index  map[string]int
}

// ParseNotification decodes an application/x-www-form-urlencoded body.
func ParseNotification(body string) (*Notification, error) {
	n := &Notification{index: map[string]int{}}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode value of %q: %w", key, err)
		}
		if i, ok := n.index[key]; ok {
			n.fields[i].Value = value
			continue
		}
		n.index[key] = len(n.fields)
		n.fields = append(n.fields, field{Key: key, Value: value})
	}
	return n, nil
}

func (n *Notification) Get(key string) string {
	if i, ok := n.index[key]; ok {
		return n.fields[i].Value
	}
	return ""
}

func (n *Notification) Len() int { return len(n.fields) }

// VerificationBody is "cmd=_notify-validate" followed by every received pair.
func (n *Notification) VerificationBody() string {
	var b strings.Builder
	b.WriteString(validateCmd)
	for _, f := range n.fields {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(f.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// Dump renders "key => value" lines for admin alerts.
func (n *Notification) Dump() string {
	var b strings.Builder
	for _, f := range n.fields {
		fmt.Fprintf(&b, "%s => %s\n", f.Key, f.Value)
	}
	return b.String()
}

func (n *Notification) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(n.fields))
	for _, f := range n.fields {
		m[f.Key] = f.Value
	}
	return json.Marshal(m)
}
