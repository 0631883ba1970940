package gc

import "fmt"

// Token is the globally unique identity of a refob. Uniqueness follows from
// pairing the address of the actor that minted the token with a counter
// that only ever increases within that actor.
type Token struct {
	Owner   Addr
	Counter uint64
}

// String implements fmt.Stringer for debug output and log fields.
func (t Token) String() string {
	return fmt.Sprintf("%s#%d", t.Owner, t.Counter)
}

// newToken mints a fresh token scoped to self using the given counter value.
func newToken(self Addr, counter uint64) Token {
	return Token{Owner: self, Counter: counter}
}
