package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/museflow/calldesk/pkg/internal/models"
)

var ErrCallNotFound = errors.New("unknown call id")

// trackedCall pairs the call with its scheduled cleanup. The generation
// counter goes up every time the cleanup is (re)scheduled, so a timer that
// already fired but lost the race for the lock can tell it has been replaced.
type trackedCall struct {
	models.Call

	cleanup *time.Timer
	gen     uint64
}

// CallRegistry is the single source of truth for active calls. All mutations
// to the map and to cleanup timers happen under its lock; provider round
// trips happen outside of it.
type CallRegistry struct {
	mu       sync.Mutex
	calls    map[string]*trackedCall
	provider RoomProvider

	domain         string
	joinWindow     time.Duration
	cleanupFloor   time.Duration
	defaultMinutes int
}

func NewCallRegistry(provider RoomProvider) *CallRegistry {
	return &CallRegistry{
		calls:          make(map[string]*trackedCall),
		provider:       provider,
		domain:         viper.GetString("calling.endpoint"),
		joinWindow:     time.Duration(viper.GetInt("calling.join_window")) * time.Minute,
		cleanupFloor:   time.Duration(viper.GetInt("calling.cleanup_floor")) * time.Second,
		defaultMinutes: viper.GetInt("calling.default_duration"),
	}
}

// Create provisions a room, mints one token per role and tracks the new call
// with its cleanup scheduled. There is no rollback: a token failure after the
// room was created leaves the room orphaned at the provider side.
func (r *CallRegistry) Create(ctx context.Context, durationMinutes int, modelName, clientName string) (models.CallSummary, error) {
	var summary models.CallSummary

	durationMinutes = lo.Ternary(durationMinutes > 0, durationMinutes, r.defaultMinutes)
	modelName = lo.Ternary(len(modelName) > 0, modelName, "Model")
	clientName = lo.Ternary(len(clientName) > 0, clientName, "Client")

	roomName, err := r.provider.CreateRoom(ctx)
	if err != nil {
		return summary, err
	}

	// The join window bounds when someone may first connect, not how long
	// the call runs, so it is independent of the call duration.
	managerToken, err := r.provider.IssueToken(roomName, models.CallRoleManager, "Manager", r.joinWindow)
	if err != nil {
		return summary, err
	}
	modelToken, err := r.provider.IssueToken(roomName, models.CallRoleModel, modelName, r.joinWindow)
	if err != nil {
		return summary, err
	}
	clientToken, err := r.provider.IssueToken(roomName, models.CallRoleClient, clientName, r.joinWindow)
	if err != nil {
		return summary, err
	}

	endsAt := time.Now().Add(time.Duration(durationMinutes) * time.Minute)
	call := &trackedCall{
		Call: models.Call{
			ID:       uuid.NewString(),
			RoomName: roomName,
			EndsAt:   endsAt,
			Tokens: map[models.CallRole]string{
				models.CallRoleManager: managerToken,
				models.CallRoleModel:   modelToken,
				models.CallRoleClient:  clientToken,
			},
			Names: map[models.CallRole]string{
				models.CallRoleModel:  modelName,
				models.CallRoleClient: clientName,
			},
		},
	}

	r.mu.Lock()
	r.calls[call.ID] = call
	r.scheduleLocked(call)
	r.mu.Unlock()

	log.Info().
		Str("call_id", call.ID).
		Str("room", roomName).
		Int("duration", durationMinutes).
		Msg("Created a new call.")

	return models.CallSummary{
		CallID:          call.ID,
		DurationMinutes: durationMinutes,
		EndsAt:          endsAt,
		EndsAtISO:       endsAt.UTC().Format(time.RFC3339),
		Links:           r.buildLinks(roomName, call.Tokens),
	}, nil
}

// End tears the call down right now. The entry and its timer are detached
// under the lock before the remote delete, so the room can never be deleted
// twice; a provider failure is surfaced to the caller.
func (r *CallRegistry) End(ctx context.Context, id string) error {
	r.mu.Lock()
	call, ok := r.calls[id]
	if !ok {
		r.mu.Unlock()
		return ErrCallNotFound
	}
	call.cleanup.Stop()
	delete(r.calls, id)
	r.mu.Unlock()

	log.Info().Str("call_id", id).Str("room", call.RoomName).Msg("Ending call on manager request.")

	return r.provider.DeleteRoom(ctx, call.RoomName)
}

// Extend pushes the deadline back and atomically swaps the cleanup timer.
func (r *CallRegistry) Extend(id string, minutes int) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := r.calls[id]
	if !ok {
		return time.Time{}, ErrCallNotFound
	}

	call.EndsAt = call.EndsAt.Add(time.Duration(minutes) * time.Minute)
	call.cleanup.Stop()
	r.scheduleLocked(call)

	log.Info().
		Str("call_id", id).
		Int("minutes", minutes).
		Time("ends_at", call.EndsAt).
		Msg("Extended call.")

	return call.EndsAt, nil
}

func (r *CallRegistry) List() []models.CallOverview {
	r.mu.Lock()
	out := make([]models.CallOverview, 0, len(r.calls))
	for _, call := range r.calls {
		out = append(out, models.CallOverview{
			CallID:     call.ID,
			RoomName:   call.RoomName,
			EndsAtISO:  call.EndsAt.UTC().Format(time.RFC3339),
			ModelName:  call.Names[models.CallRoleModel],
			ClientName: call.Names[models.CallRoleClient],
		})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EndsAtISO < out[j].EndsAtISO
	})
	return out
}

// scheduleLocked installs the cleanup timer for the call; the caller holds
// the lock. The floor keeps a deletion from firing while the creation
// response is still in flight when the remaining time is tiny or negative.
func (r *CallRegistry) scheduleLocked(call *trackedCall) {
	call.gen++
	id, gen := call.ID, call.gen

	delay := time.Until(call.EndsAt)
	if delay < r.cleanupFloor {
		delay = r.cleanupFloor
	}
	call.cleanup = time.AfterFunc(delay, func() {
		r.expire(id, gen)
	})
}

// expire is the unattended cleanup path. A stale generation means the timer
// was replaced or the call was ended while this callback waited for the lock.
// Remote deletion failures are logged only; the entry is gone regardless.
func (r *CallRegistry) expire(id string, gen uint64) {
	r.mu.Lock()
	call, ok := r.calls[id]
	if !ok || call.gen != gen {
		r.mu.Unlock()
		return
	}
	delete(r.calls, id)
	r.mu.Unlock()

	log.Info().Str("call_id", id).Str("room", call.RoomName).Msg("Call reached its deadline, closing the room.")

	if err := r.provider.DeleteRoom(context.Background(), call.RoomName); err != nil {
		log.Warn().Err(err).Str("room", call.RoomName).Msg("Unable to delete the room at provider side.")
	}
}

// Sweep removes calls whose deadline passed over a minute ago without their
// cleanup firing. It should never find anything; it exists so a lost timer
// cannot leak a registry entry forever.
func (r *CallRegistry) Sweep() {
	r.mu.Lock()
	var overdue []*trackedCall
	for id, call := range r.calls {
		if time.Since(call.EndsAt) > time.Minute {
			call.cleanup.Stop()
			delete(r.calls, id)
			overdue = append(overdue, call)
		}
	}
	r.mu.Unlock()

	for _, call := range overdue {
		log.Warn().Str("call_id", call.ID).Str("room", call.RoomName).Msg("Sweeper found an overdue call whose cleanup never fired.")
		if err := r.provider.DeleteRoom(context.Background(), call.RoomName); err != nil {
			log.Warn().Err(err).Str("room", call.RoomName).Msg("Unable to delete the room at provider side.")
		}
	}
}

func (r *CallRegistry) buildLinks(roomName string, tokens map[models.CallRole]string) models.CallLinks {
	base := fmt.Sprintf("https://%s/%s", r.domain, roomName)
	return models.CallLinks{
		Model:          fmt.Sprintf("%s?t=%s", base, url.QueryEscape(tokens[models.CallRoleModel])),
		Client:         fmt.Sprintf("%s?t=%s", base, url.QueryEscape(tokens[models.CallRoleClient])),
		ManagerStealth: fmt.Sprintf("%s?t=%s", base, url.QueryEscape(tokens[models.CallRoleManager])),
	}
}
