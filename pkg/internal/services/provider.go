package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
	"github.com/spf13/viper"

	"github.com/museflow/calldesk/pkg/internal/models"
)

// ProviderError wraps a failed operation against the conferencing provider.
type ProviderError struct {
	Op   string
	Room string
	Err  error
}

func (e *ProviderError) Error() string {
	if len(e.Room) > 0 {
		return fmt.Sprintf("provider %s for room %s: %v", e.Op, e.Room, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RoomProvider is the outbound surface of the conferencing provider: create a
// private room, mint a role-scoped join credential, tear a room down.
type RoomProvider interface {
	CreateRoom(ctx context.Context) (string, error)
	IssueToken(roomName string, role models.CallRole, displayName string, joinWindow time.Duration) (string, error)
	DeleteRoom(ctx context.Context, roomName string) error
}

type LiveKitProvider struct {
	client    *lksdk.RoomServiceClient
	apiKey    string
	apiSecret string
}

func NewLiveKitProvider() *LiveKitProvider {
	host := "https://" + viper.GetString("calling.endpoint")

	return &LiveKitProvider{
		client: lksdk.NewRoomServiceClient(
			host,
			viper.GetString("calling.api_key"),
			viper.GetString("calling.api_secret"),
		),
		apiKey:    viper.GetString("calling.api_key"),
		apiSecret: viper.GetString("calling.api_secret"),
	}
}

func newRoomName() string {
	return "room_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (v *LiveKitProvider) CreateRoom(ctx context.Context) (string, error) {
	name := newRoomName()
	_, err := v.client.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		EmptyTimeout:    viper.GetUint32("calling.empty_timeout_duration"),
		MaxParticipants: viper.GetUint32("calling.max_participants"),
	})
	if err != nil {
		return "", &ProviderError{Op: "create room", Err: err}
	}
	return name, nil
}

func (v *LiveKitProvider) IssueToken(roomName string, role models.CallRole, displayName string, joinWindow time.Duration) (string, error) {
	grant := &auth.VideoGrant{
		Room:      roomName,
		RoomJoin:  true,
		RoomAdmin: role == models.CallRoleManager,
	}

	tk := auth.NewAccessToken(v.apiKey, v.apiSecret)
	tk.AddGrant(grant).
		SetIdentity(string(role)).
		SetName(displayName).
		SetValidFor(joinWindow)

	token, err := tk.ToJWT()
	if err != nil {
		return "", &ProviderError{Op: "issue token", Room: roomName, Err: err}
	}
	return token, nil
}

func (v *LiveKitProvider) DeleteRoom(ctx context.Context, roomName string) error {
	if _, err := v.client.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	}); err != nil {
		return &ProviderError{Op: "delete room", Room: roomName, Err: err}
	}
	return nil
}
