package auth

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gosimple/slug"
)

// fallbackUsername builds a username from the first name plus a random
// numeric suffix when registration supplied none. Uniqueness is best effort;
// the store's uniqueness constraint is the backstop.
func fallbackUsername(firstName, email string) string {
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
