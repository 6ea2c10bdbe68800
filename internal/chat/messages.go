package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/matheus3301/wppclone/internal/bus"
	"github.com/matheus3301/wppclone/internal/metrics"
	"github.com/matheus3301/wppclone/internal/store"
)

// ChatSummary is one row of a user's chat list.
type ChatSummary struct {
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	ProfilePic  string `json:"profilePic"`
	Online      bool   `json:"online"`
	LastMessage string `json:"lastMessage"`
	IsImage     bool   `json:"isImage"`
	Timestamp   string `json:"timestamp"`
}

// SendMessage stores one message under both participants' thread views in a
// single persisted write. The receiver does not need to be registered.
// A message to oneself lands twice in the same thread, one entry per side.
func (s *Service) SendMessage(ctx context.Context, sender, receiver, content string, isImage bool) (store.Message, error) {
	if err := CheckPhone("sender", sender); err != nil {
		return store.Message{}, err
	}
	if err := CheckPhone("receiver", receiver); err != nil {
		return store.Message{}, err
	}
	if strings.TrimSpace(content) == "" {
		return store.Message{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(content) > maxContentBytes {
		return store.Message{}, fmt.Errorf("%w: message exceeds %d bytes", ErrInvalidInput, maxContentBytes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := store.Message{
		ID:        s.newID(),
		Sender:    sender,
		Content:   content,
		IsImage:   isImage,
		Timestamp: s.timestamp(),
	}

	next := s.state.Clone()
	appendThread(next, sender, receiver, msg)
	appendThread(next, receiver, sender, msg)
	if err := s.commit(ctx, "send_message", next); err != nil {
		return store.Message{}, err
	}

	kind := "text"
	if isImage {
		kind = "image"
	}
	metrics.MessagesSent.WithLabelValues(kind).Inc()
	s.bus.Emit(bus.KindMessageSent, MessageSent{Receiver: receiver, Message: msg})
	return msg, nil
}

func appendThread(snap *store.Snapshot, owner, peer string, msg store.Message) {
	threads, ok := snap.Chats[owner]
	if !ok {
		threads = make(map[string][]store.Message)
		snap.Chats[owner] = threads
	}
	threads[peer] = append(threads[peer], msg)
}

// Messages returns the thread between user and contact in insertion order.
func (s *Service) Messages(user, contact string) []store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Message{}, s.state.Chats[user][contact]...)
}

// ChatList joins the user's threads with contacts and users into one row per
// partner, most recent first.
func (s *Service) ChatList(user string) []ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	aliases := make(map[string]store.Contact, len(s.state.Contacts[user]))
	for _, c := range s.state.Contacts[user] {
		aliases[c.Phone] = c
	}

	out := []ChatSummary{}
	for peer, msgs := range s.state.Chats[user] {
		if len(msgs) == 0 {
			continue
		}
		last := msgs[len(msgs)-1]
		row := ChatSummary{
			Phone:       peer,
			Name:        peer,
			ProfilePic:  DefaultProfilePic,
			LastMessage: last.Content,
			IsImage:     last.IsImage,
			Timestamp:   last.Timestamp,
		}
		c, hasAlias := aliases[peer]
		if hasAlias {
			row.Name = c.Name
			if c.ProfilePic != "" {
				row.ProfilePic = c.ProfilePic
			}
		}
		if i := indexUser(s.state, peer); i >= 0 {
			u := s.state.Users[i]
			if !hasAlias {
				row.Name = u.Name
			}
			row.ProfilePic = u.ProfilePic
			row.Online = u.Status == store.StatusOnline
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Phone < out[j].Phone
	})
	return out
}
