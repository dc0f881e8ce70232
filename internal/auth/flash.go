package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayush/user-management/web/internal/models"
)

func Success(msg string) models.Flash { return models.Flash{Kind: "success", Message: msg} }
func Failure(msg string) models.Flash { return models.Flash{Kind: "error", Message: msg} }

func (s *Session) SetFlash(ctx context.Context, f models.Flash) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	return s.store.Set(ctx, s.key("flash"), string(raw), s.ttl)
}

// PopFlash returns the pending flash and removes it, or nil if none is pending.
func (s *Session) PopFlash(ctx context.Context) *models.Flash {
	raw, ok, err := s.store.Get(ctx, s.key("flash"))
	if err != nil || !ok {
		return nil
	}
	if err := s.store.Delete(ctx, s.key("flash")); err != nil {
		s.logger.Warn("flash not cleared", "session", s.id, "error", err)
	}
	var f models.Flash
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil
	}
	return &f
}
