package authrecord

import (
	"encoding/json"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

// SupportedVersion is the only serialization version Deserialize accepts.
const SupportedVersion = "1.0"

// Record is the authentication artifact produced by a successful interactive
// login. It identifies the account and carries the refresh token that lets the
// next start-up skip the login prompt. Validity is decided by the identity
// provider when the record is redeemed, never here.
type Record struct {
	Authority     string `json:"authority"`
	ClientID      string `json:"clientId"`
	HomeAccountID string `json:"homeAccountId"` // <object id>.<tenant id>
	TenantID      string `json:"tenantId"`
	Username      string `json:"username"`
	Version       string `json:"version"`
	RefreshToken  string `json:"refreshToken,omitempty"`
}

// Equal compares every field.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return *r == *other
}

// Serialize encodes the record to its on-disk form.
func Serialize(record *Record) (string, error) {
	if record == nil {
		return "", errors.New("[authrecord Serialize] record is nil")
	}
	out := *record
	if out.Version == "" {
		out.Version = SupportedVersion
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "[authrecord Serialize] json.Marshal")
	}
	return string(data), nil
}

// Deserialize decodes a serialized record. Anything that is not a complete
// record of a supported version fails with ErrDeserialization.
func Deserialize(data string) (*Record, error) {
	var record Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDeserialization, "[authrecord Deserialize] %v", err)
	}
	if record.Version != SupportedVersion {
		return nil, apperrors.Wrapf(apperrors.ErrDeserialization, "[authrecord Deserialize] unsupported version %q", record.Version)
	}
	if record.HomeAccountID == "" || record.ClientID == "" {
		return nil, apperrors.Wrapf(apperrors.ErrDeserialization, "[authrecord Deserialize] record is missing account fields")
	}
	return &record, nil
}
