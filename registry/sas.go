package registry

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

// SharedAccessSignature signs resource with the base64 key of a hub policy.
// The result is the Authorization header value the hub expects.
func SharedAccessSignature(resource, keyName, key string, expiry time.Time) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidSharedAccessKey, "key for %s is not base64", keyName)
	}

	sr := url.QueryEscape(resource)
	se := strconv.FormatInt(expiry.Unix(), 10)

	mac := hmac.New(sha256.New, decoded)
	mac.Write([]byte(sr + "\n" + se))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("SharedAccessSignature sr=%s&sig=%s&se=%s&skn=%s",
		sr, url.QueryEscape(sig), se, url.QueryEscape(keyName)), nil
}
