package store

// Presence values stored in User.Status.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents a registered account, keyed by phone.
type User struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
	Status     string `json:"status"`
}

// Contact represents an entry in an owner's address book.
// Name is the owner's alias, not necessarily the referenced user's name.
type Contact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	IsUser     bool   `json:"isUser"`
	ProfilePic string `json:"profilePic"`
}

// Message represents a single chat message. Timestamp is ISO-8601 UTC with milliseconds.
type Message struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	IsImage   bool   `json:"isImage"`
	Timestamp string `json:"timestamp"`
}

// Snapshot is the full persisted document.
// Chats is keyed by owner phone, then by counterpart phone.
type Snapshot struct {
	Users    []User                          `json:"users"`
	Contacts map[string][]Contact            `json:"contacts"`
	Chats    map[string]map[string][]Message `json:"chats"`
}

// NewSnapshot returns an empty snapshot with all collections initialized.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:    []User{},
		Contacts: make(map[string][]Contact),
		Chats:    make(map[string]map[string][]Message),
	}
}

// Clone returns a deep copy. Messages are values, so copying slices is enough.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Users:    append([]User{}, s.Users...),
		Contacts: make(map[string][]Contact, len(s.Contacts)),
		Chats:    make(map[string]map[string][]Message, len(s.Chats)),
	}
	for owner, list := range s.Contacts {
		out.Contacts[owner] = append([]Contact{}, list...)
	}
	for owner, threads := range s.Chats {
		m := make(map[string][]Message, len(threads))
		for peer, msgs := range threads {
			m[peer] = append([]Message{}, msgs...)
		}
		out.Chats[owner] = m
	}
	return out
}

// normalize replaces nil collections left by decoding "null" or missing keys.
func (s *Snapshot) normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Contacts == nil {
		s.Contacts = make(map[string][]Contact)
	}
	for owner, list := range s.Contacts {
		if list == nil {
			s.Contacts[owner] = []Contact{}
		}
	}
	if s.Chats == nil {
		s.Chats = make(map[string]map[string][]Message)
	}
	for owner, threads := range s.Chats {
		if threads == nil {
			s.Chats[owner] = make(map[string][]Message)
			continue
		}
		for peer, msgs := range threads {
			if msgs == nil {
				threads[peer] = []Message{}
			}
		}
	}
}
