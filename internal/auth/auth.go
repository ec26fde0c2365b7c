package auth

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Admin is an identity allowed to change the chart: an email address or a
// Telegram user written as "tg:<id>".
type Admin struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Repository interface {
	LoadAll() ([]Admin, error)
	Upsert(admin Admin) error
	Remove(id string) error
}

// TelegramID is the allowlist identity of a Telegram user.
func TelegramID(userID int64) string {
	return "tg:" + strconv.FormatInt(userID, 10)
}

// Normalize lowercases and trims an identity; emails are case-insensitive.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

type Service struct {
	repo    Repository
	mu      sync.RWMutex
	allowed map[string]Admin
}

// NewWithRepo preloads the repository and merges the initial identities (from env).
func NewWithRepo(repo Repository, initial []string) (*Service, error) {
	s := &Service{repo: repo, allowed: make(map[string]Admin)}
	if repo != nil {
		admins, err := repo.LoadAll()
		if err == nil {
			for _, a := range admins {
				a.ID = Normalize(a.ID)
				s.allowed[a.ID] = a
			}
		}
	}
	for _, id := range initial {
		id = Normalize(id)
		if id == "" {
			continue
		}
		if _, ok := s.allowed[id]; !ok {
			s.allowed[id] = Admin{ID: id}
		}
	}
	return s, nil
}

func (s *Service) IsAllowed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowed[Normalize(id)]
	return ok
}

func (s *Service) Upsert(admin Admin) error {
	admin.ID = Normalize(admin.ID)
	s.mu.Lock()
	s.allowed[admin.ID] = admin
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Upsert(admin)
	}
	return nil
}

func (s *Service) Remove(id string) error {
	id = Normalize(id)
	s.mu.Lock()
	delete(s.allowed, id)
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Remove(id)
	}
	return nil
}

// List is sorted by id.
func (s *Service) List() []Admin {
	s.mu.RLock()
	out := make([]Admin, 0, len(s.allowed))
	for _, a := range s.allowed {
		out = append(out, a)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
