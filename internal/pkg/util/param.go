package util

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// FlexString decodes from a json string or number. Clients send currency ids
// either way. Numbers must be non-negative integers and are kept in their
// canonical decimal form, so 2 and "2" name the same slot.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return errors.Errorf("id %s is not a non-negative integer", n)
	}
	*s = FlexString(strconv.FormatUint(id, 10))
	return nil
}

func (s FlexString) String() string { return string(s) }
