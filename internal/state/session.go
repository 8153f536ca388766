package state

import (
	"context"
	"encoding/json"
	"slices"

	log "github.com/sirupsen/logrus"
)

// MaxRecentlyViewed bounds the recently viewed list.
const MaxRecentlyViewed = 5

const (
	recentlyViewedKey = "recently_viewed"
	cartKey           = "cart"
)

// Session scopes state keys to one visitor.
type Session struct {
	store KeyValueStore
	id    string
}

func NewSession(store KeyValueStore, id string) *Session {
	return &Session{store: store, id: id}
}

func (s *Session) key(name string) string {
	return s.id + ":" + name
}

// load decodes a JSON value into dst. Failures are logged and reported as false.
func (s *Session) load(ctx context.Context, name string, dst any) bool {
	raw, ok, err := s.store.Get(ctx, s.key(name))
	if err != nil {
		log.Warnf("⚠️ Failed to load %s for session %s: %v", name, s.id, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warnf("⚠️ Discarding unreadable %s for session %s: %v", name, s.id, err)
		return false
	}
	return true
}

// save overwrites the stored value. Failures are logged and swallowed.
func (s *Session) save(ctx context.Context, name string, value any) {
	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warnf("⚠️ Failed to encode %s for session %s: %v", name, s.id, err)
		return
	}
	if err := s.store.Set(ctx, s.key(name), string(encoded)); err != nil {
		log.Warnf("⚠️ Failed to save %s for session %s: %v", name, s.id, err)
	}
}

// RecentlyViewed is a most-recent-first list of product IDs.
type RecentlyViewed struct {
	session *Session
	ids     []string
}

// RecentlyViewed loads the list; missing or unreadable state starts empty.
func (s *Session) RecentlyViewed(ctx context.Context) *RecentlyViewed {
	var ids []string
	if !s.load(ctx, recentlyViewedKey, &ids) {
		ids = nil
	}
	if len(ids) > MaxRecentlyViewed {
		ids = ids[:MaxRecentlyViewed]
	}
	return &RecentlyViewed{session: s, ids: ids}
}

// Add moves id to the front, trims the list and persists it wholesale.
func (r *RecentlyViewed) Add(ctx context.Context, id string) {
	if id == "" {
		return
	}
	ids := make([]string, 0, MaxRecentlyViewed)
	ids = append(ids, id)
	for _, existing := range r.ids {
		if existing != id && len(ids) < MaxRecentlyViewed {
			ids = append(ids, existing)
		}
	}
	r.ids = ids
	r.session.save(ctx, recentlyViewedKey, r.ids)
}

func (r *RecentlyViewed) IDs() []string {
	return slices.Clone(r.ids)
}

// CartItem is one line in the inquiry cart.
type CartItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// Cart is the local inquiry cart. It has no checkout.
type Cart struct {
	session *Session
	items   []CartItem
}

func (s *Session) Cart(ctx context.Context) *Cart {
	var items []CartItem
	if !s.load(ctx, cartKey, &items) {
		items = nil
	}
	items = slices.DeleteFunc(items, func(item CartItem) bool {
		return item.ID == "" || item.Quantity < 1
	})
	return &Cart{session: s, items: items}
}

// Add increments the quantity of id, appending a new line when absent.
func (c *Cart) Add(ctx context.Context, id string) {
	if id == "" {
		return
	}
	idx := slices.IndexFunc(c.items, func(item CartItem) bool { return item.ID == id })
	if idx >= 0 {
		c.items[idx].Quantity++
	} else {
		c.items = append(c.items, CartItem{ID: id, Quantity: 1})
	}
	c.session.save(ctx, cartKey, c.items)
}

func (c *Cart) Items() []CartItem {
	return slices.Clone(c.items)
}

// Count totals the quantities of all lines.
func (c *Cart) Count() int {
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}
