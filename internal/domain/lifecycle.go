package domain

import "strings"

// Transition is a canonical lifecycle action, independent of UI vocabulary.
type Transition string

const (
	TransitionAccept   Transition = "accept"
	TransitionDecline  Transition = "decline"
	TransitionCancel   Transition = "cancel"
	TransitionStart    Transition = "start"
	TransitionMarkDone Transition = "mark-done"
	TransitionConfirm  Transition = "confirm"
	TransitionReject   Transition = "reject"
)

// actionsByRole maps the (role, action label) pairs the UI sends to canonical
// transitions. The artisan and the client share "complete"/"completed", which
// means "I'm done" for one and "I agree it's done" for the other.
var actionsByRole = map[Role]map[string]Transition{
	RoleArtisan: {
		"accept":    TransitionAccept,
		"decline":   TransitionDecline,
		"start":     TransitionStart,
		"mark-done": TransitionMarkDone,
		"mark_done": TransitionMarkDone,
		"done":      TransitionMarkDone,
		"complete":  TransitionMarkDone,
		"completed": TransitionMarkDone,
	},
	RoleClient: {
		"cancel":             TransitionCancel,
		"confirm":            TransitionConfirm,
		"confirm-completion": TransitionConfirm,
		"complete":           TransitionConfirm,
		"completed":          TransitionConfirm,
		"reject":             TransitionReject,
		"reject-completion":  TransitionReject,
	},
}

// transitionTable is the full set of legal moves. Anything absent is illegal.
var transitionTable = map[Status]map[Transition]Status{
	StatusPending: {
		TransitionAccept:  StatusConfirmed,
		TransitionDecline: StatusDeclined,
		TransitionCancel:  StatusCancelled,
	},
	StatusConfirmed: {
		TransitionStart:    StatusInProgress,
		TransitionMarkDone: StatusPendingConfirmation,
	},
	StatusInProgress: {
		TransitionMarkDone: StatusPendingConfirmation,
	},
	StatusPendingConfirmation: {
		TransitionConfirm: StatusCompleted,
		TransitionReject:  StatusConfirmed,
	},
}

// ResolveAction maps a role-scoped action label to its canonical transition.
// ok is false when role has no such action; known reports whether any role
// recognizes the label at all, in which case t is that role's transition.
func ResolveAction(role Role, action string) (t Transition, ok bool, known bool) {
	label := strings.ToLower(strings.TrimSpace(action))
	if m, exists := actionsByRole[role]; exists {
		if t, ok := m[label]; ok {
			return t, true, true
		}
	}
	for _, m := range actionsByRole {
		if t, ok := m[label]; ok {
			return t, false, true
		}
	}
	return "", false, false
}

// Next returns the status reached by applying t to from.
func Next(from Status, t Transition) (Status, bool) {
	to, ok := transitionTable[from][t]
	return to, ok
}

// ActorFor returns the role allowed to perform t.
func ActorFor(t Transition) Role {
	switch t {
	case TransitionCancel, TransitionConfirm, TransitionReject:
		return RoleClient
	default:
		return RoleArtisan
	}
}
