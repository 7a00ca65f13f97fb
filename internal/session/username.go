package session

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gosimple/slug"
)

// deriveUsername builds a username from the display name plus a random
// numeric suffix. Uniqueness is best effort: the suffix makes collisions
// unlikely, and the store's uniqueness constraint is the backstop.
func deriveUsername(firstName, email string) string {
	base := strings.ReplaceAll(slug.Make(firstName), "-", "")
	if base == "" {
		local, _, _ := strings.Cut(email, "@")
		base = strings.ReplaceAll(slug.Make(local), "-", "")
	}
	if base == "" {
		base = "player"
	}
	return fmt.Sprintf("%s%d", base, rand.IntN(1000))
}
