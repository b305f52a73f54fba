// Package voicegate arbitrates a guild's single voice connection between
// audio-emitting components. Exactly one owner may hold a guild's token at a
// time; acquisition is fail-fast so a caller can report "busy with X" instead
// of queueing behind it.
package voicegate

import "sync"

// Well-known owner labels.
const (
	OwnerMusic  = "music"
	OwnerSpeech = "speech"
)

type Gate struct {
	mu      sync.Mutex
	holders map[string]string // guildID -> owner
}

func New() *Gate {
	return &Gate{holders: make(map[string]string)}
}

// TryAcquire claims the guild token for owner. Returns true if the token was
// free or already held by the same owner.
func (g *Gate) TryAcquire(guildID, owner string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if holder, ok := g.holders[guildID]; ok {
		return holder == owner
	}
	g.holders[guildID] = owner
	return true
}

// Release frees the guild token if owner holds it. Releasing a token held by
// someone else, or not held at all, is a no-op.
func (g *Gate) Release(guildID, owner string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holders[guildID] == owner {
		delete(g.holders, guildID)
	}
}

// Holder reports the current owner of the guild token, if any.
func (g *Gate) Holder(guildID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	owner, ok := g.holders[guildID]
	return owner, ok
}

// HeldBy reports whether owner currently holds the guild token.
func (g *Gate) HeldBy(guildID, owner string) bool {
	holder, ok := g.Holder(guildID)
	return ok && holder == owner
}
