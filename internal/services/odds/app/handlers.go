package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/louisbranch/conquest-engine/internal/combat/round"
	"github.com/louisbranch/conquest-engine/internal/combat/table"
	enginerrors "github.com/louisbranch/conquest-engine/internal/errors"
	"github.com/louisbranch/conquest-engine/internal/platform/httpx"
	"github.com/louisbranch/conquest-engine/internal/storage"
)

type handlers struct {
	cfg Config
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type oddsResponse struct {
	Attackers   int     `json:"attackers"`
	Defenders   int     `json:"defenders"`
	Probability float64 `json:"probability"`
	Source      string  `json:"source"`
}

// conquestOdds answers advisory "what are my chances" queries. It never
// mutates game state and is safe to call at any rate.
func (h *handlers) conquestOdds(w http.ResponseWriter, r *http.Request) {
	attackers, ok := queryInt(w, r, "attackers")
	if !ok {
		return
	}
	defenders, ok := queryInt(w, r, "defenders")
	if !ok {
		return
	}

	source := "computed"
	if h.cfg.Service.InTable(attackers, defenders) || attackers == 0 || defenders == 0 {
		source = "table"
	}
	probability, err := h.cfg.Service.Probability(attackers, defenders)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	_ = httpx.WriteJSON(w, http.StatusOK, oddsResponse{
		Attackers:   attackers,
		Defenders:   defenders,
		Probability: probability,
		Source:      source,
	})
}

type roundRequest struct {
	AttackerArmies int    `json:"attacker_armies"`
	DefenderArmies int    `json:"defender_armies"`
	Seed           *int64 `json:"seed,omitempty"`
}

type roundResponse struct {
	AttackerRolls  []int `json:"attacker_rolls"`
	DefenderRolls  []int `json:"defender_rolls"`
	AttackerLosses int   `json:"attacker_losses"`
	DefenderLosses int   `json:"defender_losses"`
	Seed           int64 `json:"seed"`
}

// resolveRound fights one live combat round. The caller owns the attack
// loop and re-submits with updated army counts to continue.
func (h *handlers) resolveRound(w http.ResponseWriter, r *http.Request) {
	var request roundRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, string(enginerrors.CodeUnknown), "invalid request body")
		return
	}

	var seed int64
	if request.Seed != nil {
		seed = *request.Seed
	} else {
		minted, err := h.cfg.SeedFunc()
		if err != nil {
			_ = httpx.WriteJSONError(w, http.StatusInternalServerError, string(enginerrors.CodeUnknown), "failed to generate seed")
			return
		}
		seed = minted
	}

	result, err := round.Resolve(round.Request{
		AttackerArmies: request.AttackerArmies,
		DefenderArmies: request.DefenderArmies,
		Seed:           seed,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	_ = httpx.WriteJSON(w, http.StatusOK, roundResponse{
		AttackerRolls:  result.AttackerRolls,
		DefenderRolls:  result.DefenderRolls,
		AttackerLosses: result.AttackerLosses,
		DefenderLosses: result.DefenderLosses,
		Seed:           seed,
	})
}

type rebuildRequest struct {
	MaxAttackerArmies int `json:"max_attacker_armies"`
	MaxDefenderArmies int `json:"max_defender_armies"`
}

type rebuildResponse struct {
	MaxAttackerArmies int `json:"max_attacker_armies"`
	MaxDefenderArmies int `json:"max_defender_armies"`
	Cells             int `json:"cells"`
}

// rebuildTable is the administrative replace operation: build a fresh
// table, persist it, then publish it with an atomic swap so in-flight
// readers keep the old table until they are done.
func (h *handlers) rebuildTable(w http.ResponseWriter, r *http.Request) {
	var request rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, string(enginerrors.CodeUnknown), "invalid request body")
		return
	}

	ctx, span := otel.Tracer("conquest-engine/odds").Start(r.Context(), "table.rebuild")
	defer span.End()
	span.SetAttributes(
		attribute.Int("table.max_attacker_armies", request.MaxAttackerArmies),
		attribute.Int("table.max_defender_armies", request.MaxDefenderArmies),
	)

	built, err := table.Build(ctx, table.BuildRequest{
		MaxAttackerArmies: request.MaxAttackerArmies,
		MaxDefenderArmies: request.MaxDefenderArmies,
		Workers:           h.cfg.BuildWorkers,
		MaxCells:          h.cfg.MaxTableCells,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if h.cfg.Store != nil {
		encoded, err := table.Encode(built)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if err := h.cfg.Store.Put(ctx, storage.DefaultTableName, encoded); err != nil {
			writeEngineError(w, err)
			return
		}
	}

	h.cfg.Service.Replace(built)

	_ = httpx.WriteJSON(w, http.StatusOK, rebuildResponse{
		MaxAttackerArmies: built.MaxAttack(),
		MaxDefenderArmies: built.MaxDefend(),
		Cells:             (built.MaxAttack() + 1) * (built.MaxDefend() + 1),
	})
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, string(enginerrors.CodeInvalidArmyCount), name+" query parameter is required")
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, string(enginerrors.CodeInvalidArmyCount), name+" must be an integer")
		return 0, false
	}
	return value, true
}

func writeEngineError(w http.ResponseWriter, err error) {
	code := enginerrors.FromError(err)
	_ = httpx.WriteJSONError(w, enginerrors.HTTPStatus(code), string(code), err.Error())
}
