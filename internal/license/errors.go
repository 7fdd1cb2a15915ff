package license

import "errors"

// ErrQuotaExceeded is returned by CheckQuota when a requested increment
// would push usage past the license's limit.
var ErrQuotaExceeded = errors.New("license quota exceeded")
