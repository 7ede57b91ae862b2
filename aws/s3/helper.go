package s3

import (
	"fmt"
	"net/url"
	"strings"
)

const scheme = "s3"

// URI returns s3://<bucket>/<prefix>/ for a folder prefix, or s3://<bucket>/ for an empty prefix.
func URI(bucket, prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%v://%v/", scheme, bucket)
	}
	return fmt.Sprintf("%v://%v/%v/", scheme, bucket, prefix)
}

// DecodeEventKey undoes the form encoding S3 applies to object keys in event notifications.
func DecodeEventKey(key string) (string, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return "", fmt.Errorf("unable to decode object key %q: %v", key, err)
	}
	return decoded, nil
}
