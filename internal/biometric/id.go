// Package biometric holds types shared by the fingerprint and face identification paths.
package biometric

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexibleID is an identifier that devices and recognizers report either as a JSON string or a JSON number.
// It always holds the textual form ("42" for both 42 and "42"). null and "" decode to the empty id.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("biometric: id must be a string or number, got %s", b)
	}
	*id = FlexibleID(n.String())
	return nil
}

// String returns the id text.
func (id FlexibleID) String() string {
	return string(id)
}
