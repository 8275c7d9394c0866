package skill

import (
	"sort"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

// Handler applies one skill effect tag.
type Handler interface {
	// Apply runs the effect of sk cast by attacker. target is the selected
	// enemy and may be nil for self and ally skills when no enemy is left.
	Apply(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill)

// Apply implements Handler.
func (f HandlerFunc) Apply(ctx *Context, attacker, target *model.CombatUnit, sk *data.Skill) {
	f(ctx, attacker, target, sk)
}

// handlerRegistry maps effect tag → handler.
// Populated by init() in the handler files.
var handlerRegistry = map[string]Handler{}

// RegisterHandler registers a handler for an effect tag. A later registration
// of the same tag replaces the earlier one.
func RegisterHandler(tag string, h Handler) {
	handlerRegistry[tag] = h
}

// LookupHandler returns the handler registered for tag.
func LookupHandler(tag string) (Handler, bool) {
	h, ok := handlerRegistry[tag]
	return h, ok
}

// Tags returns every registered effect tag, sorted.
func Tags() []string {
	tags := make([]string, 0, len(handlerRegistry))
	for t := range handlerRegistry {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
