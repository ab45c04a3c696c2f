package mastodon

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeAccounts accepts either a bare account array or a {status, message} envelope.
func decodeAccounts(body []byte) ([]Account, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrUnexpectedBody)
	}
	root := gjson.ParseBytes(body)

	switch {
	case root.IsArray():
		var out []Account
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
		}
		return out, nil

	case root.IsObject():
		status := root.Get("status")
		if status.Type != gjson.True {
			return nil, ErrStatusFalse
		}
		msg := root.Get("message")
		if !msg.IsArray() {
			return nil, fmt.Errorf("%w: message is not an array", ErrUnexpectedBody)
		}
		var out []Account
		if err := json.Unmarshal([]byte(msg.Raw), &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedBody, root.Type)
	}
}
