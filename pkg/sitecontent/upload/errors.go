package upload

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// UploadError wraps a failed transfer with a retriable/non-retriable
// classification. The pipeline never retries on its own; retry policy
// belongs to the caller.
type UploadError struct {
	Key       string
	Retriable bool
	Err       error
}

func (e *UploadError) Error() string {
	kind := "non-retriable"
	if e.Retriable {
		kind = "retriable"
	}
	return fmt.Sprintf("upload failed for key %s (%s): %v", e.Key, kind, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// retriableCodes are backend error codes worth retrying: transient server
// conditions and throttling. Auth and request-shape failures are not here
// on purpose.
var retriableCodes = map[string]bool{
	"RequestTimeout":      true,
	"SlowDown":            true,
	"Throttling":          true,
	"ThrottlingException": true,
	"InternalError":       true,
	"ServiceUnavailable":  true,
}

// classify reports whether a transfer failure is worth retrying.
func classify(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return retriableCodes[apiErr.ErrorCode()]
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() >= 500
	}

	return false
}
