package room

import (
	"context"
	"hash/fnv"
	"math/rand"

	"golang.org/x/exp/maps"

	"github.com/roomcast/server/internal/repository/room"
)

// chatColorPalette is the fixed set of visually distinct chat colors.
var chatColorPalette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080",
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#f7b267",
	"#b388eb", "#70d6ff",
}

// allocateColor picks a random palette color not used by any current member
// of the room. Once the palette is exhausted it falls back to a
// deterministic color derived from the user id, so the result is always a
// valid palette entry.
func (s *service) allocateColor(ctx context.Context, r room.Room, userId string) string {
	used := make(map[string]struct{}, len(r.MemberIds))
	for _, memberId := range r.MemberIds {
		u, err := s.userRepo.Get(ctx, memberId)
		if err != nil {
			continue
		}
		used[u.Color] = struct{}{}
	}

	available := make([]string, 0, len(chatColorPalette))
	for _, color := range chatColorPalette {
		if _, taken := used[color]; !taken {
			available = append(available, color)
		}
	}

	if len(available) == 0 {
		s.logger.DebugContext(ctx, "palette exhausted, hashing color",
			"room_id", r.Id, "used", maps.Keys(used))
		h := fnv.New32a()
		h.Write([]byte(userId))
		return chatColorPalette[int(h.Sum32())%len(chatColorPalette)]
	}

	return available[rand.Intn(len(available))]
}
