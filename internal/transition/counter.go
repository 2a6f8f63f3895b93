package transition

import "github.com/alecgard/enclave/internal/apiclient"

// RejectionCounter counts writes refused before they reach the backend.
type RejectionCounter interface {
	IncValidationRejection(resource string)
}

// Count passes err through, counting it against resource when it is a local
// validation failure. A nil counter is allowed.
func Count(c RejectionCounter, resource string, err error) error {
	if err != nil && c != nil && apiclient.KindOf(err) == apiclient.KindValidation {
		c.IncValidationRejection(resource)
	}
	return err
}
