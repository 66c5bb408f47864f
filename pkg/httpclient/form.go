package httpclient

import (
	"fmt"
	"net/url"
)

// Form holds key/value pairs sent as application/x-www-form-urlencoded data.
// Values are converted with their string form.
type Form map[string]any

const formContentType = "application/x-www-form-urlencoded"

// EncodeForm percent-encodes every key and value and joins them as key=value pairs
// separated by '&'. Keys are emitted in sorted order.
func EncodeForm(form Form) string {
	if len(form) == 0 {
		return ""
	}
	values := make(url.Values, len(form))
	for k, v := range form {
		values.Set(k, formValue(v))
	}
	return values.Encode()
}

func formValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
