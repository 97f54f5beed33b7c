// Package contacts keeps the rider's emergency contacts in dial order.
package contacts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ridershield/ridershield/internal/domain/model"
	"github.com/ridershield/ridershield/pkg/logger"
)

// entry pairs a contact with its insertion sequence, the tie-breaker for
// equal priorities.
type entry struct {
	contact model.EmergencyContact
	seq     uint64
}

// Directory is the single ordered collection of contacts. Primary and
// secondary views are derived from it on every read.
type Directory struct {
	mu      sync.RWMutex
	entries []entry // sorted by (priority, seq)
	nextSeq uint64
	newID   func() string
	log     logger.Logger
}

// NewDirectory creates an empty directory.
func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		newID: uuid.NewString,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Seed inserts contacts as given, keeping their priorities. Contacts without
// an ID get one; contacts with an invalid priority are placed last.
func (d *Directory) Seed(cs ...model.EmergencyContact) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range cs {
		if c.ID == "" {
			c.ID = d.newID()
		}
		if c.Priority < 1 {
			c.Priority = len(d.entries) + 1
		}
		d.insertLocked(c)
	}
	d.sortLocked()
}

// Add appends a contact at priority count+1.
func (d *Directory) Add(ctx context.Context, name, phone string) (model.EmergencyContact, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return model.EmergencyContact{}, ErrInvalidContact
	}

	d.mu.Lock()
	c := model.EmergencyContact{
		ID:       d.newID(),
		Name:     name,
		Phone:    phone,
		Priority: len(d.entries) + 1,
	}
	d.insertLocked(c)
	d.sortLocked()
	d.mu.Unlock()

	d.log.Info(ctx, "contact added",
		logger.String("id", c.ID),
		logger.String("name", c.Name),
		logger.Int("priority", c.Priority))
	return c, nil
}

// Remove deletes a contact. Protected contacts cannot be removed.
func (d *Directory) Remove(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if d.entries[i].contact.Protected {
		return fmt.Errorf("%w: %s", ErrProtected, d.entries[i].contact.Name)
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	d.log.Info(ctx, "contact removed", logger.String("id", id))
	return nil
}

// Reassign moves a contact to a new priority. Ties with existing contacts are
// resolved by original insertion order.
func (d *Directory) Reassign(ctx context.Context, id string, priority int) error {
	if priority < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if d.entries[i].contact.Protected {
		return fmt.Errorf("%w: %s", ErrProtected, d.entries[i].contact.Name)
	}
	d.entries[i].contact.Priority = priority
	d.sortLocked()
	d.log.Info(ctx, "contact reassigned", logger.String("id", id), logger.Int("priority", priority))
	return nil
}

// Get returns a contact by id.
func (d *Directory) Get(id string) (model.EmergencyContact, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i := d.indexLocked(id)
	if i < 0 {
		return model.EmergencyContact{}, false
	}
	return d.entries[i].contact, true
}

// All returns every contact in dial order.
func (d *Directory) All() []model.EmergencyContact {
	return d.filter(func(model.EmergencyContact) bool { return true })
}

// Primary returns the dial sequence: priorities 1 through 4, ascending.
func (d *Directory) Primary() []model.EmergencyContact {
	return d.filter(model.EmergencyContact.IsPrimary)
}

// Secondary returns the contacts not dialed on escalation.
func (d *Directory) Secondary() []model.EmergencyContact {
	return d.filter(func(c model.EmergencyContact) bool { return !c.IsPrimary() })
}

// Len returns the number of contacts.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// FindInTranscript returns the first contact, in dial order, whose name is
// contained in text (case-insensitive).
func (d *Directory) FindInTranscript(text string) (model.EmergencyContact, bool) {
	return FindIn(text, d.All())
}

// FindIn is FindInTranscript over an explicit contact list.
func FindIn(text string, cs []model.EmergencyContact) (model.EmergencyContact, bool) {
	text = strings.ToLower(text)
	for _, c := range cs {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" && strings.Contains(text, name) {
			return c, true
		}
	}
	return model.EmergencyContact{}, false
}

func (d *Directory) filter(keep func(model.EmergencyContact) bool) []model.EmergencyContact {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.EmergencyContact, 0, len(d.entries))
	for _, e := range d.entries {
		if keep(e.contact) {
			out = append(out, e.contact)
		}
	}
	return out
}

func (d *Directory) insertLocked(c model.EmergencyContact) {
	d.nextSeq++
	d.entries = append(d.entries, entry{contact: c, seq: d.nextSeq})
}

func (d *Directory) sortLocked() {
	sort.SliceStable(d.entries, func(i, j int) bool {
		a, b := d.entries[i], d.entries[j]
		if a.contact.Priority != b.contact.Priority {
			return a.contact.Priority < b.contact.Priority
		}
		return a.seq < b.seq
	})
}

func (d *Directory) indexLocked(id string) int {
	for i, e := range d.entries {
		if e.contact.ID == id {
			return i
		}
	}
	return -1
}
