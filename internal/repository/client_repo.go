package repository

import (
	"errors"
	"sort"
	"sync"

	"go-pos-ledger/internal/model"
)

var ErrClientNotFound = errors.New("client not found")

var ErrInvalidClient = errors.New("invalid client")

type ClientRepository interface {
	FindAll() ([]model.Client, error)
	FindByID(id string) (*model.Client, error)
	Save(client *model.Client) error
}

type clientRepo struct {
	mu      sync.RWMutex
	clients map[string]model.Client
}

func NewClientRepo(clients []model.Client) ClientRepository {
	r := &clientRepo{clients: make(map[string]model.Client, len(clients))}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *clientRepo) FindAll() ([]model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]model.Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (r *clientRepo) FindByID(id string) (*model.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return nil, ErrClientNotFound
	}
	return &c, nil
}

// Save inserts or replaces the client under its ID.
func (r *clientRepo) Save(client *model.Client) error {
	if client == nil || client.ID == "" {
		return ErrInvalidClient
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[client.ID] = *client
	return nil
}
