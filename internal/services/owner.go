package services

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"

	"github.com/example/orchid/internal/models"
)

// ResolvedOwner is the outcome of principal resolution. MintedSession is
// non-empty only when a fresh guest token was generated; the transport layer
// must echo it back so the client can persist it.
type ResolvedOwner struct {
	Owner         models.Owner
	MintedSession string
}

// ResolveOwner determines the acting principal. An authenticated account
// always wins; otherwise the caller-supplied session hint identifies the
// guest. Without a hint, a new opaque session token is minted only when the
// operation requires an owner; two hintless guest calls never share
// identity.
func ResolveOwner(accountID *uuid.UUID, sessionHint string, required bool) (ResolvedOwner, error) {
	if accountID != nil {
		return ResolvedOwner{Owner: models.AccountOwner(*accountID)}, nil
	}

	if sessionHint != "" {
		return ResolvedOwner{Owner: models.GuestOwner(sessionHint)}, nil
	}

	if !required {
		return ResolvedOwner{}, nil
	}

	token, err := NewSessionToken()
	if err != nil {
		return ResolvedOwner{}, err
	}

	return ResolvedOwner{
		Owner:         models.GuestOwner(token),
		MintedSession: token,
	}, nil
}

// NewSessionToken mints an opaque, unguessable guest session identifier.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
