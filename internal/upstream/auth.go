package upstream

import "context"

// Credentials supplies and revokes the bearer token of the current visitor.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Purge(ctx context.Context) error
}

type credentialsKey struct{}

// WithCredentials attaches the visitor's credentials to ctx for the customer client.
func WithCredentials(ctx context.Context, c Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, c)
}

func credentialsFrom(ctx context.Context) Credentials {
	c, _ := ctx.Value(credentialsKey{}).(Credentials)
	return c
}
