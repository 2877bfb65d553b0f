package service

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lineform-api/internal/domain/enum"
	"github.com/sangkips/lineform-api/internal/domain/lineitem"
	"github.com/sangkips/lineform-api/internal/infrastructure/spreadsheet"
	"github.com/sangkips/lineform-api/pkg/apperror"
)

// FormServiceConfig holds the settings shared by all form sessions
type FormServiceConfig struct {
	BaseCurrency    string
	LookupTimeout   time.Duration
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

// FormService keeps the open entry forms. Each form owns one store and one
// rate resolver for its whole lifetime.
type FormService struct {
	rateSource RateSource
	cfg        FormServiceConfig

	mu    sync.RWMutex
	forms map[uuid.UUID]*formSession
	stop  chan struct{}
	once  sync.Once
}

type formSession struct {
	mu       sync.Mutex
	id       uuid.UUID
	ownerID  uuid.UUID
	store    *lineitem.Store
	resolver *RateResolver
	lastSeen time.Time
}

// NewFormService creates a new form service. When a cleanup interval is set,
// idle forms older than the session TTL are discarded in the background.
func NewFormService(rateSource RateSource, cfg FormServiceConfig) *FormService {
	s := &FormService{
		rateSource: rateSource,
		cfg:        cfg,
		forms:      make(map[uuid.UUID]*formSession),
		stop:       make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 && cfg.SessionTTL > 0 {
		go s.cleanupLoop()
	}
	return s
}

// Close stops the background cleanup
func (s *FormService) Close() {
	s.once.Do(func() { close(s.stop) })
}

// CreateForm opens a new form for the given subjects
func (s *FormService) CreateForm(ctx context.Context, ownerID uuid.UUID, kind enum.FormKind, subjects []lineitem.Subject) (*FormView, error) {
	store, err := lineitem.NewStore(lineitem.ConfigFor(kind, s.cfg.BaseCurrency), subjects)
	if err != nil {
		return nil, err
	}

	session := &formSession{
		id:       uuid.New(),
		ownerID:  ownerID,
		store:    store,
		resolver: NewRateResolver(s.rateSource, s.cfg.BaseCurrency, s.cfg.LookupTimeout),
		lastSeen: time.Now(),
	}

	s.mu.Lock()
	s.forms[session.id] = session
	s.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()
	s.refreshRates(ctx, session)
	return buildView(session), nil
}

// GetForm returns the current state and totals of a form
func (s *FormService) GetForm(ctx context.Context, ownerID, formID uuid.UUID) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(*formSession) error { return nil })
}

// DiscardForm drops a form and everything it holds
func (s *FormService) DiscardForm(ctx context.Context, ownerID, formID uuid.UUID) error {
	if _, err := s.session(ownerID, formID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.forms, formID)
	s.mu.Unlock()
	return nil
}

// ReplaceSubjects rebuilds the store of a form for a new set of subjects.
// Entries of the previous store are discarded; cached rates are kept.
func (s *FormService) ReplaceSubjects(ctx context.Context, ownerID, formID uuid.UUID, subjects []lineitem.Subject) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		store, err := lineitem.NewStore(fs.store.Config(), subjects)
		if err != nil {
			return err
		}
		fs.store = store
		return nil
	})
}

// AddGroup appends a group to a form
func (s *FormService) AddGroup(ctx context.Context, ownerID, formID uuid.UUID, subject lineitem.Subject) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		_, err := fs.store.AddGroup(subject)
		return err
	})
}

// RemoveGroup removes a group from a form
func (s *FormService) RemoveGroup(ctx context.Context, ownerID, formID uuid.UUID, groupID string) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		return fs.store.RemoveGroup(groupID)
	})
}

// AddEntry appends an empty entry to a group
func (s *FormService) AddEntry(ctx context.Context, ownerID, formID uuid.UUID, groupID string) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		_, err := fs.store.AddEntry(groupID)
		return err
	})
}

// UpdateEntry patches one entry
func (s *FormService) UpdateEntry(ctx context.Context, ownerID, formID, entryID uuid.UUID, patch lineitem.Patch) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		_, err := fs.store.UpdateEntry(entryID, patch)
		return err
	})
}

// RemoveEntry removes one entry unless it is the last of its group
func (s *FormService) RemoveEntry(ctx context.Context, ownerID, formID, entryID uuid.UUID) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		_, err := fs.store.RemoveEntry(entryID)
		return err
	})
}

// ApplyToSiblings propagates the first entry of a group to its siblings
func (s *FormService) ApplyToSiblings(ctx context.Context, ownerID, formID uuid.UUID, groupID string) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		return fs.store.ApplyToSiblings(groupID)
	})
}

// ApplyToAllGroups propagates the very first entry to every group
func (s *FormService) ApplyToAllGroups(ctx context.Context, ownerID, formID uuid.UUID) (*FormView, error) {
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		fs.store.ApplyToAllGroups()
		return nil
	})
}

// RetryRate looks up a currency again after a failed lookup
func (s *FormService) RetryRate(ctx context.Context, ownerID, formID uuid.UUID, code string) (*FormView, error) {
	code, err := lineitem.NormalizeCurrency(code)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		fs.resolver.Retry(ctx, code)
		return nil
	})
}

// ImportEntries fills entries from an .xlsx workbook
func (s *FormService) ImportEntries(ctx context.Context, ownerID, formID uuid.UUID, workbook io.Reader) (*FormView, error) {
	rows, err := spreadsheet.ParseEntryRows(workbook)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	return s.mutate(ctx, ownerID, formID, func(fs *formSession) error {
		_, err := fs.store.Import(rows)
		return err
	})
}

// SubmitResult holds the records of a successful submission
type SubmitResult struct {
	FormID             uuid.UUID         `json:"form_id"`
	Records            []lineitem.Record `json:"records"`
	DegradedCurrencies []string          `json:"degraded_currencies"`
}

// Submit validates the whole form and maps every filled entry. Any partial
// entry fails the submission with field errors keyed by entry id.
func (s *FormService) Submit(ctx context.Context, ownerID, formID uuid.UUID) (*SubmitResult, error) {
	fs, err := s.session(ownerID, formID)
	if err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.lastSeen = time.Now()
	s.refreshRates(ctx, fs)

	res := lineitem.ValidateAndMap(fs.store.Groups(), fs.store.Config(), fs.resolver.Table())
	if err := res.Err(); err != nil {
		return nil, err
	}
	return &SubmitResult{
		FormID:             fs.id,
		Records:            res.Records,
		DegradedCurrencies: fs.resolver.Degraded(),
	}, nil
}

// mutate runs fn under the form lock, then resolves new currencies and
// returns the recomputed view.
func (s *FormService) mutate(ctx context.Context, ownerID, formID uuid.UUID, fn func(*formSession) error) (*FormView, error) {
	fs, err := s.session(ownerID, formID)
	if err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.lastSeen = time.Now()

	if err := fn(fs); err != nil {
		return nil, err
	}
	s.refreshRates(ctx, fs)
	return buildView(fs), nil
}

// refreshRates resolves every currency in use that has no cached rate yet.
// Codes whose lookup was cut short by a cancelled request stay uncached and
// are picked up by the next call.
func (s *FormService) refreshRates(ctx context.Context, fs *formSession) {
	if fs.resolver.Ensure(ctx, fs.store.Currencies()) {
		log.Printf("[forms] rates refreshed for form %s", fs.id)
	}
}

func (s *FormService) session(ownerID, formID uuid.UUID) (*formSession, error) {
	s.mu.RLock()
	fs, ok := s.forms[formID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NewNotFoundError("Form")
	}
	if fs.ownerID != ownerID {
		return nil, apperror.ErrForbidden
	}
	return fs, nil
}

func (s *FormService) cleanupLoop() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup discards forms that have been idle longer than the session TTL.
// Sessions busy with a request are skipped; they are not idle.
func (s *FormService) cleanup() {
	cutoff := time.Now().Add(-s.cfg.SessionTTL)

	s.mu.RLock()
	sessions := make([]*formSession, 0, len(s.forms))
	for _, fs := range s.forms {
		sessions = append(sessions, fs)
	}
	s.mu.RUnlock()

	var idle []*formSession
	for _, fs := range sessions {
		if isIdle(fs, cutoff) {
			idle = append(idle, fs)
		}
	}
	if len(idle) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fs := range idle {
		// Checked again: a request may have reached the form since the scan.
		if s.forms[fs.id] != fs || !isIdle(fs, cutoff) {
			continue
		}
		delete(s.forms, fs.id)
		log.Printf("[forms] discarded idle form %s", fs.id)
	}
}

// isIdle reports whether fs was last used before cutoff. It never waits on a
// busy session.
func isIdle(fs *formSession, cutoff time.Time) bool {
	if !fs.mu.TryLock() {
		return false
	}
	defer fs.mu.Unlock()
	return fs.lastSeen.Before(cutoff)
}
