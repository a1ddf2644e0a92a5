package mock

import "github.com/krysczajkowski/ytcomments"

var _ ytcomments.EgressProvider = (*EgressProvider)(nil)

// EgressProvider is a mock implementation of ytcomments.EgressProvider.
type EgressProvider struct {
	NextEgressFn func() (string, error)
}

func (p *EgressProvider) NextEgress() (string, error) {
	return p.NextEgressFn()
}
