package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ownerKind int

const (
	ownerAccount ownerKind = iota + 1
	ownerGuest
)

// Owner identifies who a shopping record belongs to: exactly one of an
// authenticated account or an anonymous guest session. The constructors are
// the only way to build one, so a record can never carry both identities.
type Owner struct {
	kind      ownerKind
	accountID uuid.UUID
	sessionID string
}

// AccountOwner builds an owner for an authenticated account.
func AccountOwner(accountID uuid.UUID) Owner {
	return Owner{kind: ownerAccount, accountID: accountID}
}

// GuestOwner builds an owner for an anonymous session token.
func GuestOwner(sessionID string) Owner {
	return Owner{kind: ownerGuest, sessionID: sessionID}
}

// IsAccount reports whether the owner is an authenticated account.
func (o Owner) IsAccount() bool { return o.kind == ownerAccount }

// IsGuest reports whether the owner is an anonymous session.
func (o Owner) IsGuest() bool { return o.kind == ownerGuest }

// IsZero reports whether the owner was never set.
func (o Owner) IsZero() bool { return o.kind == 0 }

// AccountID returns the account id when the owner is an account.
func (o Owner) AccountID() (uuid.UUID, bool) {
	return o.accountID, o.kind == ownerAccount
}

// SessionID returns the session token when the owner is a guest.
func (o Owner) SessionID() (string, bool) {
	return o.sessionID, o.kind == ownerGuest
}

// Scope narrows a query to rows owned by this owner. The opposite identity
// column is always required to be NULL, even though the constructors make a
// mixed row impossible to write through this package: historical rows are
// filtered out on read as well.
func (o Owner) Scope(db *gorm.DB) *gorm.DB {
	if o.kind == ownerAccount {
		return db.Where("user_id = ? AND session_id IS NULL", o.accountID)
	}
	return db.Where("session_id = ? AND user_id IS NULL", o.sessionID)
}

// Stamp writes the owner identity onto a record, clearing the other column.
func (o Owner) Stamp(userID **uuid.UUID, sessionID **string) {
	if o.kind == ownerAccount {
		id := o.accountID
		*userID = &id
		*sessionID = nil
		return
	}
	sid := o.sessionID
	*userID = nil
	*sessionID = &sid
}
