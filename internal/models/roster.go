package models

// Этапы воронки продаж, в порядке прохождения.
const (
	StageNewInquiry     = "New Inquiry"
	StageInitialContact = "Initial Contact"
	StageFollowUp       = "Follow Up"
	StageOffersMade     = "Offers Made"
	StageNegotiating    = "Negotiating"
	StageSold           = "Sold"
	StageClosed         = "Closed"
)

// Stages is the fixed ordered pipeline.
var Stages = []string{
	StageNewInquiry,
	StageInitialContact,
	StageFollowUp,
	StageOffersMade,
	StageNegotiating,
	StageSold,
	StageClosed,
}

// DefaultAgents — сотрудники, которым можно назначить заявку.
var DefaultAgents = []string{"Abdallah", "Azam", "Ishaak", "Dilshard", "Shanilka", "Thabith", "Thanish", "Zubair"}

// Roster holds the enumerations offered by the selection lists.
type Roster struct {
	Agents []string
	Stages []string
}

func DefaultRoster() Roster {
	agents := make([]string, len(DefaultAgents))
	copy(agents, DefaultAgents)
	stages := make([]string, len(Stages))
	copy(stages, Stages)
	return Roster{Agents: agents, Stages: stages}
}

func (r Roster) IsAgent(name string) bool { return contains(r.Agents, name) }

func (r Roster) IsStage(stage string) bool { return contains(r.Stages, stage) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// StageClass maps a stage to the CSS class of its table row. Unknown stages
// get no class.
func StageClass(stage string) string {
	switch stage {
	case StageNewInquiry:
		return "row-new-inquiry"
	case StageInitialContact:
		return "row-initial-contact"
	case StageFollowUp:
		return "row-follow-up"
	case StageOffersMade:
		return "row-offers-made"
	case StageNegotiating:
		return "row-negotiating"
	case StageSold:
		return "row-sold"
	case StageClosed:
		return "row-closed"
	default:
		return ""
	}
}
