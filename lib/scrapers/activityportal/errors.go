package activityportal

import "fmt"

// ErrLoginFailed means the handshake did not yield the expected
// credential fragment at one of its steps.
var ErrLoginFailed = fmt.Errorf("failed to login to the activities portal")

// AuthRejectedError means the portal refused a token it previously
// accepted. Retrying the same token cannot succeed, the caller has to
// re-authenticate.
type AuthRejectedError struct {
	Status int
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("portal rejected credentials (status %d)", e.Status)
}
