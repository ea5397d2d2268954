package domainresolver

import "github.com/dpp-hub/portal-core/internal/domain"

// ErrorKind tags why a custom domain could not be resolved.
type ErrorKind string

const (
	// ErrDomainNotFound means no tenant claims the hostname.
	ErrDomainNotFound ErrorKind = "domain_not_found"
	// ErrResolution means the remote lookup failed.
	ErrResolution ErrorKind = "resolution_error"
)

// State is what the portal gate sees for a hostname.
type State struct {
	IsCustomDomain bool                     `json:"isCustomDomain"`
	IsResolving    bool                     `json:"isResolving"`
	Resolution     *domain.DomainResolution `json:"resolution"`
	Error          *ErrorKind               `json:"error"`
}

// Failed reports whether the state carries an error.
func (s State) Failed() bool {
	return s.Error != nil
}

func failed(kind ErrorKind) State {
	return State{IsCustomDomain: true, Error: &kind}
}
