// Package addressbook keeps named Nano addresses next to the wallet secrets.
package addressbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/store"
)

// Key is the store key holding the JSON-encoded contacts.
const Key = "address_book"

const maxNameLen = 64

var (
	ErrInvalidName = fmt.Errorf("%w: contact name must be 1 to %d characters", nano.ErrValidation, maxNameLen)
	ErrNotFound    = errors.New("contact not found")
)

// Book is safe for concurrent use. Contacts are unique by address and listed
// by name.
type Book struct {
	mu    sync.Mutex
	store store.Store
}

func New(s store.Store) *Book {
	return &Book{store: s}
}

// List returns all contacts.
func (b *Book) List(ctx context.Context) ([]model.Contact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Add saves a contact, renaming it when the address is already known. The
// address is stored in its xrb_ form.
func (b *Book) Add(ctx context.Context, name, address string) (model.Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return model.Contact{}, ErrInvalidName
	}
	normalized, err := nano.NormalizeAddress(strings.TrimSpace(address))
	if err != nil {
		return model.Contact{}, err
	}
	contact := model.Contact{Name: name, Address: normalized}

	b.mu.Lock()
	defer b.mu.Unlock()

	contacts, err := b.load(ctx)
	if err != nil {
		return model.Contact{}, err
	}
	replaced := false
	for i := range contacts {
		if contacts[i].Address == normalized {
			contacts[i] = contact
			replaced = true
			break
		}
	}
	if !replaced {
		contacts = append(contacts, contact)
	}
	if err := b.save(ctx, contacts); err != nil {
		return model.Contact{}, err
	}

	log.Info().Str("name", name).Str("address", normalized).Bool("renamed", replaced).Msg("Contact saved")
	return contact, nil
}

// Remove deletes the contact for address.
func (b *Book) Remove(ctx context.Context, address string) error {
	normalized, err := nano.NormalizeAddress(strings.TrimSpace(address))
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	contacts, err := b.load(ctx)
	if err != nil {
		return err
	}
	kept := contacts[:0]
	for _, c := range contacts {
		if c.Address != normalized {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(contacts) {
		return ErrNotFound
	}
	if err := b.save(ctx, kept); err != nil {
		return err
	}

	log.Info().Str("address", normalized).Msg("Contact removed")
	return nil
}

func (b *Book) load(ctx context.Context) ([]model.Contact, error) {
	raw, err := b.store.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return []model.Contact{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read address book: %w", err)
	}
	var contacts []model.Contact
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return nil, fmt.Errorf("failed to parse address book: %w", err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}

func (b *Book) save(ctx context.Context, contacts []model.Contact) error {
	sort.SliceStable(contacts, func(i, j int) bool {
		a, c := strings.ToLower(contacts[i].Name), strings.ToLower(contacts[j].Name)
		if a != c {
			return a < c
		}
		return contacts[i].Address < contacts[j].Address
	})
	raw, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("failed to marshal address book: %w", err)
	}
	if err := b.store.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("failed to write address book: %w", err)
	}
	return nil
}
