package execution

import "hunit/internal/domain"

// Case couples a test id with its executable unit. The scheduler never
// inspects what the body does: anything that can be identified by a TestID
// and invoked to produce results qualifies.
//
// A Case may instead carry a collection error (Err). The worker converts it
// into a synthetic error Result without dispatching a body, so a broken
// module surfaces as failing tests rather than silently vanishing from the
// count.
type Case struct {
	ID   domain.TestID
	Body func(*T)
	Err  error
}
