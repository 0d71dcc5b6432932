package client

import (
	"context"

	"github.com/famchat/famchat/internal/models"
)

// avatarEmojis is the fixed decorative set; the pick must be stable per name.
var avatarEmojis = []string{"👨", "👩", "👦", "👧", "🧑", "👴", "👵", "🧒", "👶"}

// AvatarEmoji picks the decorative avatar for a name by hashing its first
// character into the fixed set.
func AvatarEmoji(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return avatarEmojis[0]
	}
	return avatarEmojis[int(runes[0])%len(avatarEmojis)]
}

// Directory derives the list of reachable conversation partners from the set
// of registered identities.
type Directory struct {
	store RecordStore
}

func NewDirectory(store RecordStore) *Directory {
	return &Directory{store: store}
}

// Chats returns one selectable entry per registered identity other than self,
// most recently created first (the store orders them). LastMessage and
// UnreadCount stay empty placeholders.
func (d *Directory) Chats(ctx context.Context, self models.Identity) ([]models.ChatPreview, error) {
	profiles, err := d.store.Profiles(ctx)
	if err != nil {
		return nil, err
	}

	chats := make([]models.ChatPreview, 0, len(profiles))
	for _, p := range profiles {
		name := p.DisplayName
		if name == "" {
			name = p.Email
		}
		chats = append(chats, models.ChatPreview{
			Key:    models.NewConversationKey(self.ID, p.ID),
			UserID: p.ID,
			Name:   name,
			Avatar: AvatarEmoji(name),
		})
	}
	return chats, nil
}
