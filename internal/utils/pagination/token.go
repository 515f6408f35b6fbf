package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const fieldSeparator = "|"

// EncodeMultiFieldToken creates an opaque page token from the sort key fields
// of the last row served.
func EncodeMultiFieldToken(fields ...string) string {
	return base64.URLEncoding.EncodeToString([]byte(strings.Join(fields, fieldSeparator)))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	if len(decodedBytes) == 0 {
		return nil, fmt.Errorf("invalid pagination token format (empty)")
	}
	return strings.Split(string(decodedBytes), fieldSeparator), nil
}
