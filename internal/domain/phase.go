package domain

// GamePhase is the stage of a room's state machine. AssignRoles is
// transient: the orchestrator enters and leaves it within one call.
type GamePhase string

const (
	PhaseLobby         GamePhase = "LOBBY"
	PhaseAssignRoles   GamePhase = "ASSIGN_ROLES"
	PhaseCategoryInput GamePhase = "CATEGORY_INPUT"
	PhaseWordInput     GamePhase = "WORD_INPUT"
	PhaseVoting        GamePhase = "VOTING"
	PhaseFinished      GamePhase = "FINISHED"
)

func (p GamePhase) String() string { return string(p) }
