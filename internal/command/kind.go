package command

// Kind is the closed set of governance commands.
type Kind uint8

const (
	KindUnrecognized Kind = iota
	KindFill
	KindAppend
	KindShow
	KindPropose
	KindApprove
	KindRefuse
	KindSupersede
)

var kindNames = [...]string{
	KindUnrecognized: "unrecognized",
	KindFill:         "fill",
	KindAppend:       "append",
	KindShow:         "show",
	KindPropose:      "propose",
	KindApprove:      "approve",
	KindRefuse:       "refuse",
	KindSupersede:    "supersede",
}

// Kinds lists every recognized command kind, in help order.
var Kinds = []Kind{
	KindFill,
	KindAppend,
	KindShow,
	KindPropose,
	KindApprove,
	KindRefuse,
	KindSupersede,
}

// actions maps accepted action words to kinds. "reject" is an alias.
var actions = map[string]Kind{
	"fill":      KindFill,
	"append":    KindAppend,
	"show":      KindShow,
	"propose":   KindPropose,
	"approve":   KindApprove,
	"refuse":    KindRefuse,
	"reject":    KindRefuse,
	"supersede": KindSupersede,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unrecognized"
}

// MarshalText renders the kind name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Mutating reports whether a successful command of this kind changes a record.
func (k Kind) Mutating() bool {
	switch k {
	case KindFill, KindAppend, KindPropose, KindApprove, KindRefuse, KindSupersede:
		return true
	case KindShow, KindUnrecognized:
		return false
	}
	return false
}

// LookupKind resolves an action word. The second result is false for
// words that are not part of the grammar.
func LookupKind(action string) (Kind, bool) {
	k, ok := actions[action]
	return k, ok
}
