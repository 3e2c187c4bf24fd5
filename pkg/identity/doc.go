// Package identity carries the authenticated caller of a request.
//
// When bearer authentication is enabled the JWT middleware builds an
// Identity from the token claims and stores it in the request context:
//
//	ctx = identity.Set(ctx, id)
//
// Handlers read it back with Get. Requests served with authentication
// disabled carry no Identity, and Subject returns "".
package identity
