package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"citizen-helpdesk-be/pkg/store"
)

type SuggestionStateRepository struct {
	cache *cache.Cache
}

func NewSuggestionStateRepository() *SuggestionStateRepository {
	// States expire after an hour of inactivity; the janitor sweeps every
	// ten minutes. Expiry doubles as the backstop for abandoned conversations.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SuggestionStateRepository{
		cache: c,
	}
}

func (r *SuggestionStateRepository) Save(state *store.SuggestionState) {
	r.cache.Set(state.ConversationId, state, cache.DefaultExpiration)
}

func (r *SuggestionStateRepository) Get(conversationId string) (*store.SuggestionState, bool) {
	if x, found := r.cache.Get(conversationId); found {
		return x.(*store.SuggestionState), true
	}
	return nil, false
}

func (r *SuggestionStateRepository) Delete(conversationId string) {
	r.cache.Delete(conversationId)
}

// Flush clears every conversation's state. Used when the global mode leaves
// human-in-the-loop: pending suggestions must all become unreadable at once.
func (r *SuggestionStateRepository) Flush() {
	r.cache.Flush()
}
