package navigator

// Phase is the position in the selection chain. Phases only move one step
// down at a time; a selection higher up moves back to that level.
type Phase int

const (
	Unauthenticated Phase = iota
	Authenticated
	SubscriptionSelected
	ResourceGroupSelected
	HubSelected
)

func (p Phase) String() string {
	switch p {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case SubscriptionSelected:
		return "subscription-selected"
	case ResourceGroupSelected:
		return "resource-group-selected"
	case HubSelected:
		return "hub-selected"
	}
	return "unknown"
}

// Level is one of the four selectable lists.
type Level int

const (
	LevelSubscription Level = iota
	LevelResourceGroup
	LevelHub
	LevelDevice
)

// AllLevels lists the levels top down.
var AllLevels = []Level{LevelSubscription, LevelResourceGroup, LevelHub, LevelDevice}

func (l Level) String() string {
	switch l {
	case LevelSubscription:
		return "subscription"
	case LevelResourceGroup:
		return "resource group"
	case LevelHub:
		return "IoT hub"
	case LevelDevice:
		return "edge device"
	}
	return "unknown"
}

// State is a snapshot of the current selection.
type State struct {
	Phase          Phase
	Username       string
	SubscriptionID string
	ResourceGroup  string
	Hub            string
}

// Enabled reports whether level may be listed and selected from.
func (s State) Enabled(level Level) bool {
	switch level {
	case LevelSubscription:
		return s.Phase >= Authenticated
	case LevelResourceGroup:
		return s.Phase >= SubscriptionSelected
	case LevelHub:
		return s.Phase >= ResourceGroupSelected
	case LevelDevice:
		return s.Phase >= HubSelected
	}
	return false
}

// Levels returns the enabled flag of every level.
func (s State) Levels() map[Level]bool {
	levels := make(map[Level]bool, len(AllLevels))
	for _, l := range AllLevels {
		levels[l] = s.Enabled(l)
	}
	return levels
}
