package tracker

import (
	"context"

	"github.com/cncf/clotributor/go/skerr"
)

// TokenPool hands out API tokens to tracker tasks. A token is owned
// exclusively by one task at a time, so the pool doubles as a concurrency
// cap on in-flight calls to the source host. Tokens are handed out in FIFO
// order so usage rotates across the pool.
type TokenPool struct {
	tokens chan string
}

// NewTokenPool returns a TokenPool holding the given tokens.
func NewTokenPool(tokens []string) (*TokenPool, error) {
	if len(tokens) == 0 {
		return nil, skerr.Fmt("GitHub tokens not found in config file (creds.githubTokens)")
	}
	ch := make(chan string, len(tokens))
	for _, token := range tokens {
		ch <- token
	}
	return &TokenPool{
		tokens: ch,
	}, nil
}

// Acquire blocks until a token is available or the context is done.
func (p *TokenPool) Acquire(ctx context.Context) (string, error) {
	select {
	case token := <-p.tokens:
		return token, nil
	case <-ctx.Done():
		return "", skerr.Wrap(ctx.Err())
	}
}

// Release returns a token to the pool. It must only be called with a token
// obtained from Acquire.
func (p *TokenPool) Release(token string) {
	p.tokens <- token
}
