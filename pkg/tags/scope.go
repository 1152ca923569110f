package tags

import (
	"sync"

	"github.com/flosch/pongo2/v6"
)

// bodyScopes tracks, per document parser, the block components whose bodies
// are being parsed. A slot tag marks the innermost one as owning slots.
var (
	bodyScopesMu sync.Mutex
	bodyScopes   = map[*pongo2.Parser][]*componentNode{}
)

func enterBody(doc *pongo2.Parser, node *componentNode) {
	bodyScopesMu.Lock()
	defer bodyScopesMu.Unlock()
	bodyScopes[doc] = append(bodyScopes[doc], node)
}

func leaveBody(doc *pongo2.Parser) {
	bodyScopesMu.Lock()
	defer bodyScopesMu.Unlock()
	stack := bodyScopes[doc]
	if len(stack) <= 1 {
		delete(bodyScopes, doc)
		return
	}
	bodyScopes[doc] = stack[:len(stack)-1]
}

func markSlotOwner(doc *pongo2.Parser) {
	bodyScopesMu.Lock()
	defer bodyScopesMu.Unlock()
	if stack := bodyScopes[doc]; len(stack) > 0 {
		stack[len(stack)-1].hasSlots = true
	}
}

// collecting reports whether ctx belongs to a pass that only gathers named
// slots and discards its output.
func collecting(ctx *pongo2.ExecutionContext) bool {
	owner, ok := ctx.Private[collectorKey].(*collector)
	return ok && owner.collectOnly
}
