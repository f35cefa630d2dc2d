package identityfake

import (
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
)

var errStale = apperrors.Wrapf(apperrors.ErrStaleRecord, "[FakeAuthenticator Resume] refresh token rejected")
