package gc

import (
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// Refob is a directed reference object: it authorizes Owner to send
// messages to Target. Owner is absent only for the small set of refobs
// minted outside the actor system entirely (an external receptionist
// handle into the root actor). Two refobs are considered the same refob
// iff their tokens are equal; Owner and Target are immutable properties of
// the token they were minted with.
type Refob struct {
	Token  Token
	Owner  fn.Option[Addr]
	Target Addr
}

// NewRefob constructs a refob from its three constituent parts. Most
// refobs are produced internally by State's operations; this constructor
// exists for seeding external/receptionist refobs and for tests.
func NewRefob(token Token, owner fn.Option[Addr], target Addr) Refob {
	return Refob{Token: token, Owner: owner, Target: target}
}

// noOwner is a sentinel returned by UnwrapOr when a refob's owner is
// absent (the external-receptionist case). Real addresses are minted by
// the runtime and never collide with it.
const noOwner Addr = "\x00<no-owner>"

// ownedBy reports whether addr is the authorized sender of r.
func (r Refob) ownedBy(addr Addr) bool {
	return r.Owner.UnwrapOr(noOwner) == addr
}

// OwnerAddr returns r's owner and true, or the zero Addr and false if r
// was minted without an owner (the external-receptionist case). Exported
// for callers outside this package that need to serialize a Refob, such
// as internal/snapshotstore.
func (r Refob) OwnerAddr() (Addr, bool) {
	owner := r.Owner.UnwrapOr(noOwner)
	if owner == noOwner {
		return "", false
	}
	return owner, true
}

// String implements fmt.Stringer.
func (r Refob) String() string {
	return fmt.Sprintf("(%s -> %s)", r.Token, r.Target)
}
