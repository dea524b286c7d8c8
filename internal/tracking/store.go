// Package tracking хранит на клиенте оптимистичное состояние отправленных
// запросов цены по паре (заявка, мастерская) и сводит его с сервером.
package tracking

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/senyabanana/repair-quotes/internal/clock"
	"github.com/senyabanana/repair-quotes/internal/models"
)

// Store - кэш отслеживаемых запросов. Множество отправляемых ключей живет
// только в памяти, записи и выбор пользователя сохраняются через Persister.
type Store struct {
	mu        sync.Mutex
	entries   map[Key]*Entry
	sending   map[Key]struct{}
	selection Selection

	persister Persister
	clock     clock.Clock
	logger    *log.Logger
}

// New создает пустой кэш без сохранения на диск.
func New(clk clock.Clock, logger *log.Logger) *Store {
	return &Store{
		entries: make(map[Key]*Entry),
		sending: make(map[Key]struct{}),
		clock:   clk,
		logger:  logger,
	}
}

// Open восстанавливает записи и выбор пользователя из persister.
// Множество отправляемых ключей после Open всегда пустое.
func Open(ctx context.Context, persister Persister, clk clock.Clock, logger *log.Logger) (*Store, error) {
	snapshot, err := persister.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := New(clk, logger)
	s.persister = persister
	s.selection = snapshot.Selection
	for _, e := range snapshot.Entries {
		if !e.Key().Valid() {
			continue
		}
		entry := e.clone()
		s.entries[entry.Key()] = &entry
	}
	return s, nil
}

// MarkSending добавляет ключ в множество отправляемых. Активную запись
// не проверяет, для этого есть Begin.
func (s *Store) MarkSending(key Key) {
	if !key.Valid() {
		return
	}
	s.mu.Lock()
	s.sending[key] = struct{}{}
	s.mu.Unlock()
}

// Begin атомарно помечает ключ отправляемым, если по нему нет активной
// записи и незавершенной отправки.
func (s *Store) Begin(key Key) bool {
	if !key.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sending[key]; ok {
		return false
	}
	if e, ok := s.entries[key]; ok && e.Status.IsActive() {
		return false
	}
	s.sending[key] = struct{}{}
	return true
}

// MarkSent подтверждает отправку: ключ покидает множество отправляемых,
// запись сохраняется со статусом submitted и нулевым счетчиком повторов,
// заменяя прежнюю.
func (s *Store) MarkSent(ctx context.Context, entry Entry) error {
	key := entry.Key()
	if !key.Valid() {
		return models.NewErrorResponse(models.KindValidation, "entry requires request and workshop ids")
	}

	now := s.clock.Now()
	stored := entry.clone()
	stored.Status = StatusSubmitted
	stored.RetryCount = 0
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sending, key)
	s.entries[key] = &stored
	return s.persistLocked(ctx)
}

// MarkFailed откатывает отправку. Существующая запись получает статус
// failed, без записи ничего не сохраняется.
func (s *Store) MarkFailed(ctx context.Context, key Key) error {
	if !key.Valid() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sending, key)
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	entry.Status = StatusFailed
	entry.RetryCount++
	entry.UpdatedAt = s.clock.Now()
	return s.persistLocked(ctx)
}

// Track проводит отправку через кэш: Begin, затем send и MarkSent при
// успехе или MarkFailed при ошибке. Активная запись или незавершенная
// отправка по ключу дают Conflict, send при этом не вызывается.
func (s *Store) Track(ctx context.Context, entry Entry, send func(context.Context) error) error {
	key := entry.Key()
	if !key.Valid() {
		return models.NewErrorResponse(models.KindValidation, "entry requires request and workshop ids")
	}
	if !s.Begin(key) {
		return models.Errorf(models.KindConflict, "quote for %s/%s is already active or in flight", key.RequestID, key.WorkshopID)
	}
	if err := send(ctx); err != nil {
		if failErr := s.MarkFailed(ctx, key); failErr != nil {
			return errors.Join(err, failErr)
		}
		return err
	}
	return s.MarkSent(ctx, entry)
}

// UpdateStatus меняет статус существующей записи и дополняет метаданные.
// Для отсутствующей записи ничего не делает. Статусы submitted и failed
// выставляются только через MarkSent и MarkFailed.
func (s *Store) UpdateStatus(ctx context.Context, key Key, status Status, metadata map[string]string) error {
	switch {
	case !knownStatuses[status]:
		return models.Errorf(models.KindValidation, "unknown tracking status %q", status)
	case status == StatusSubmitted || status == StatusFailed:
		return models.Errorf(models.KindInvalidState, "status %s is set only by send confirmation or failure", status)
	}
	if !key.Valid() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if len(metadata) > 0 && entry.Metadata == nil {
		entry.Metadata = make(map[string]string, len(metadata))
	}
	for k, v := range metadata {
		entry.Metadata[k] = v
	}
	entry.Status = status
	entry.UpdatedAt = s.clock.Now()
	return s.persistLocked(ctx)
}

// SyncFromServer сводит записи с серверным состоянием через Reconcile.
// Ключи с незавершенной отправкой пропускаются: их судьбу решит MarkSent
// или MarkFailed.
func (s *Store) SyncFromServer(ctx context.Context, server []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, remote := range server {
		key := remote.Key()
		if !key.Valid() || !knownStatuses[remote.Status] {
			continue
		}
		if _, ok := s.sending[key]; ok {
			continue
		}
		resolved := Reconcile(s.entries[key], remote)
		s.entries[key] = &resolved
		changed++
	}
	if changed == 0 {
		return nil
	}
	if s.logger != nil {
		s.logger.Printf("tracking: reconciled %d entries with server", changed)
	}
	return s.persistLocked(ctx)
}

// ClearAll удаляет все записи, выбор пользователя и отправляемые ключи.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[Key]*Entry)
	s.sending = make(map[Key]struct{})
	s.selection = Selection{}
	return s.persistLocked(ctx)
}

// SetSelection запоминает выбранные заявку и автомобиль.
func (s *Store) SetSelection(ctx context.Context, selection Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = selection
	return s.persistLocked(ctx)
}

func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// IsQuoteActive истинно, только если запись есть и ее статус submitted,
// viewed или quoted.
func (s *Store) IsQuoteActive(requestID, workshopID string) bool {
	key := Key{RequestID: requestID, WorkshopID: workshopID}
	if !key.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	return ok && entry.Status.IsActive()
}

// HasQuoteSent - синоним IsQuoteActive.
func (s *Store) HasQuoteSent(requestID, workshopID string) bool {
	return s.IsQuoteActive(requestID, workshopID)
}

func (s *Store) IsSending(requestID, workshopID string) bool {
	key := Key{RequestID: requestID, WorkshopID: workshopID}
	if !key.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sending[key]
	return ok
}

// Entry возвращает копию записи или nil.
func (s *Store) Entry(requestID, workshopID string) *Entry {
	key := Key{RequestID: requestID, WorkshopID: workshopID}
	if !key.Valid() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	out := entry.clone()
	return &out
}

// State возвращает фазу ключа.
func (s *Store) State(requestID, workshopID string) KeyState {
	key := Key{RequestID: requestID, WorkshopID: workshopID}
	if !key.Valid() {
		return KeyState{Phase: PhaseIdle}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, sending := s.sending[key]
	var entry *Entry
	if e, ok := s.entries[key]; ok {
		out := e.clone()
		entry = &out
	}
	return stateOf(entry, sending)
}

// Entries возвращает копии всех записей, упорядоченные по ключу.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entriesLocked()
}

func (s *Store) entriesLocked() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().less(out[j].Key())
	})
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, Snapshot{Entries: s.entriesLocked(), Selection: s.selection})
}
