package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/museflow/calldesk/pkg/internal/models"
)

func TestNewRoomName(t *testing.T) {
	a, b := newRoomName(), newRoomName()
	if !strings.HasPrefix(a, "room_") {
		t.Errorf("room name %q lacks prefix", a)
	}
	if len(a) != len("room_")+12 {
		t.Errorf("room name %q has unexpected length", a)
	}
	if a == b {
		t.Errorf("two generated room names collided: %q", a)
	}
}

func TestIssueTokenMintsRoleScopedJWT(t *testing.T) {
	p := &LiveKitProvider{
		apiKey:    "APIknownkey",
		apiSecret: "a-reasonably-long-test-secret",
	}

	manager, err := p.IssueToken("room_abc", models.CallRoleManager, "Manager", 3*time.Hour)
	if err != nil {
		t.Fatalf("manager token: %v", err)
	}
	model, err := p.IssueToken("room_abc", models.CallRoleModel, "Anna", 3*time.Hour)
	if err != nil {
		t.Fatalf("model token: %v", err)
	}

	for _, tk := range []string{manager, model} {
		if parts := strings.Split(tk, "."); len(parts) != 3 {
			t.Errorf("token %q is not a JWT", tk)
		}
	}
	if manager == model {
		t.Error("manager and model tokens are identical")
	}
}

func TestProviderErrorFormatting(t *testing.T) {
	cause := errors.New("upstream said no")
	err := &ProviderError{Op: "delete room", Room: "room_x", Err: cause}
	if !strings.Contains(err.Error(), "room_x") || !strings.Contains(err.Error(), "delete room") {
		t.Errorf("unhelpful error string: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("ProviderError does not unwrap to its cause")
	}
}
