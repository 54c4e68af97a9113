package game

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/impostor/internal/domain"
)

// resolveRound runs once the vote quorum is reached. Caller holds the
// room lock.
func (o *Orchestrator) resolveRound(room *domain.Room) {
	counts := make(map[domain.PlayerID]int, len(room.Votes))
	for _, target := range room.Votes {
		counts[target]++
	}
	maxVotes := 0
	for _, c := range counts {
		if c > maxVotes {
			maxVotes = c
		}
	}
	// Top candidates in join order so an injected Rand picks
	// deterministically.
	var top []domain.PlayerID
	if maxVotes > 0 {
		for _, p := range room.Players {
			if counts[p.ID] == maxVotes {
				top = append(top, p.ID)
			}
		}
	}

	var ejectedID domain.PlayerID
	switch {
	case len(top) > 1:
		if !room.TieBreaker {
			// First tie: restricted re-vote, same round, same phase.
			room.EnterTieBreak(top)
			log.Info().Str("module", "game.orchestrator").Str("room", room.Code).Int("tied", len(top)).Msg("tie-break entered")
			o.broadcast(room, "Tie! Vote again between the tied players.")
			return
		}
		// Second consecutive tie: the coin decides.
		ejectedID = top[o.Rand.IntN(len(top))]
		room.ClearTieBreak()
	case len(top) == 1:
		ejectedID = top[0]
		room.ClearTieBreak()
	}

	clear(room.Votes)

	if ejectedID == "" {
		o.broadcast(room, "No one was ejected.")
	} else if ejected := room.FindPlayer(ejectedID); ejected != nil {
		if ejected.Role == domain.RoleImpostor {
			o.finishGame(room, "Impostor ejected! Players win!")
			return
		}
		ejected.Role = domain.RoleSpectator
		o.broadcast(room, ejected.Username+" was NOT the impostor.")
	}

	// A 1-vs-1 standoff with the impostor is unwinnable for the
	// innocents.
	active := room.ActivePlayers()
	impostorActive := false
	for _, p := range active {
		if p.Role == domain.RoleImpostor {
			impostorActive = true
			break
		}
	}
	if len(active) <= 2 && impostorActive {
		o.finishGame(room, "Impostor wins! Too few players remain.")
		return
	}

	room.CurrentRound++
	if room.CurrentRound > room.MaxRounds {
		o.finishGame(room, "Impostor survived! Impostor wins!")
		return
	}
	o.determineFirstSpeaker(room)
	o.broadcast(room, fmt.Sprintf("Round %d begins.", room.CurrentRound))
}

// finishGame snapshots the current first speaker for the next game in
// this room before announcing the outcome.
func (o *Orchestrator) finishGame(room *domain.Room, message string) {
	room.PreviousGameLastFirstSpeakerID = room.FirstSpeakerID
	room.Phase = domain.PhaseFinished
	log.Info().Str("module", "game.orchestrator").Str("room", room.Code).Str("outcome", message).Msg("game finished")
	o.broadcast(room, message)
}

// determineFirstSpeaker runs whenever a voting round begins. Round 1
// prefers the carry-over from the previous game; later rounds rotate
// through the active players in join order, falling back to the head of
// the order when the current speaker was ejected.
func (o *Orchestrator) determineFirstSpeaker(room *domain.Room) {
	active := room.ActivePlayers()
	if len(active) == 0 {
		return
	}
	if room.CurrentRound <= 1 {
		if prev := room.PreviousGameLastFirstSpeakerID; prev != "" {
			for _, p := range active {
				if p.ID == prev {
					room.FirstSpeakerID = prev
					return
				}
			}
		}
		room.FirstSpeakerID = active[o.Rand.IntN(len(active))].ID
		return
	}
	idx := -1
	for i, p := range active {
		if p.ID == room.FirstSpeakerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		room.FirstSpeakerID = active[0].ID
		return
	}
	room.FirstSpeakerID = active[(idx+1)%len(active)].ID
}
