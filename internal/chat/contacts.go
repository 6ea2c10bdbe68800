package chat

import (
	"context"
	"fmt"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/metrics"
	"github.com/matheus3301/wppclone/internal/store"
)

// AddContact appends a contact to owner's list. The owner does not have to be
// registered, and contactPhone may belong to nobody (IsUser is then false).
func (s *Service) AddContact(ctx context.Context, owner, contactName, contactPhone string) (store.Contact, error) {
	if err := CheckPhone("userPhone", owner); err != nil {
		return store.Contact{}, err
	}
	if err := CheckPhone("contactPhone", contactPhone); err != nil {
		return store.Contact{}, err
	}
	contactName = SanitizeName(contactName)
	if contactName == "" {
		return store.Contact{}, fmt.Errorf("%w: contactName is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.Contacts[owner] {
		if c.Phone == contactPhone {
			return store.Contact{}, fmt.Errorf("%w: %s already has %s", ErrDuplicateContact, owner, contactPhone)
		}
	}

	contact := store.Contact{
		Name:       contactName,
		Phone:      contactPhone,
		ProfilePic: DefaultProfilePic,
	}
	if i := indexUser(s.state, contactPhone); i >= 0 {
		contact.IsUser = true
		contact.ProfilePic = s.state.Users[i].ProfilePic
	}

	next := s.state.Clone()
	next.Contacts[owner] = append(next.Contacts[owner], contact)
	if err := s.commit(ctx, "add_contact", next); err != nil {
		return store.Contact{}, err
	}

	metrics.ContactsAdded.Inc()
	s.bus.Emit(bus.KindContactAdded, ContactAdded{Owner: owner, Contact: contact})
	return contact, nil
}

// Contacts returns owner's contact list, empty if there is none.
func (s *Service) Contacts(owner string) []store.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Contact{}, s.state.Contacts[owner]...)
}
