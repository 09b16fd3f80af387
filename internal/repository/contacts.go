package repository

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/qarzbook/ledgercore/internal/apperrors"
	"github.com/qarzbook/ledgercore/internal/cache"
	"github.com/qarzbook/ledgercore/internal/decode"
	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/validate"
)

// ListContacts returns the contact collection, cache-first, sorted by name.
// On transport failure it degrades to the last cached value, then to an
// empty list. It never returns an error.
func (r *Repository) ListContacts(ctx context.Context, forceRefresh bool) []models.Contact {
	if records, ok := r.caches.Contacts.Get(ctx, forceRefresh); ok {
		return records
	}

	records, err := r.refreshContacts(ctx)
	if err != nil {
		r.logger.Warn("contact refresh failed, serving cached or empty", zap.Error(err))
		if cached, ok := r.caches.Contacts.Peek(ctx); ok {
			return cached
		}
		return []models.Contact{}
	}
	return records
}

func (r *Repository) refreshContacts(ctx context.Context) ([]models.Contact, error) {
	result, err := r.sharedFetch(ctx, cache.KeyContacts, func(ctx context.Context) (any, error) {
		seq := r.caches.Contacts.NextSeq()
		env, err := r.request(ctx, http.MethodGet, "/contacts", nil)
		if err != nil {
			return nil, err
		}

		var diag decode.Diagnostics
		contacts := r.decoder.Contacts(env.Data, &diag)
		r.logDiagnostics("contacts", &diag)

		sortContacts(contacts)
		r.caches.Contacts.Put(ctx, seq, contacts)
		return contacts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Contact), nil
}

// GetContact fetches a single contact by id and freshens it inside a
// still-valid cache slot without resetting the slot's TTL.
func (r *Repository) GetContact(ctx context.Context, id string) (models.Contact, error) {
	env, err := r.request(ctx, http.MethodGet, "/contacts/"+id, nil)
	if err != nil {
		return models.Contact{}, err
	}

	var diag decode.Diagnostics
	contact := r.decoder.Contact(env.Data, &diag)
	r.logDiagnostics("contacts", &diag)

	r.caches.Contacts.UpsertSingle(ctx, contact, func(c models.Contact) bool { return c.ID == contact.ID })
	return contact, nil
}

// CreateContact validates locally, then creates the contact upstream. A
// validation failure enumerates per-field errors and never reaches the
// transport.
func (r *Repository) CreateContact(ctx context.Context, input models.ContactInput) (models.Contact, error) {
	if err := r.validator.Struct(&input); err != nil {
		return models.Contact{}, apperrors.Validation(validate.Fields(err))
	}

	env, err := r.request(ctx, http.MethodPost, "/contacts", contactPayload(input))
	if err != nil {
		return models.Contact{}, err
	}

	var diag decode.Diagnostics
	contact := r.decoder.Contact(env.Data, &diag)
	r.logDiagnostics("contacts", &diag)

	r.caches.Contacts.Invalidate(ctx)
	return contact, nil
}

// UpdateContact validates locally, then updates the contact upstream.
func (r *Repository) UpdateContact(ctx context.Context, id string, input models.ContactInput) (models.Contact, error) {
	if err := r.validator.Struct(&input); err != nil {
		return models.Contact{}, apperrors.Validation(validate.Fields(err))
	}

	env, err := r.request(ctx, http.MethodPut, "/contacts/"+id, contactPayload(input))
	if err != nil {
		return models.Contact{}, err
	}

	var diag decode.Diagnostics
	contact := r.decoder.Contact(env.Data, &diag)
	if contact.FullName == "" {
		// Some deployments answer mutations with an empty body.
		contact = models.Contact{ID: id, FullName: input.FullName, PhoneNumber: input.PhoneNumber, Email: input.Email}
	}
	r.logDiagnostics("contacts", &diag)

	r.caches.Contacts.Invalidate(ctx)
	return contact, nil
}

// DeleteContact refuses to delete a contact that still has unpaid debts,
// without issuing the upstream delete. The guard keeps debt records from
// pointing at a contact that no longer exists, and fails closed: when the
// debt state cannot be confirmed upstream, the delete is not attempted.
func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	debts, err := r.verifiedDebtsByContact(ctx, id)
	if err != nil {
		return err
	}

	unpaid := 0
	for _, d := range debts {
		if !d.IsPaidBack {
			unpaid++
		}
	}
	if unpaid > 0 {
		return &apperrors.Error{
			Kind:    apperrors.KindConflict,
			Message: "contact has active debts",
			Fields:  map[string]string{"activeDebts": strconv.Itoa(unpaid)},
		}
	}

	if _, err := r.request(ctx, http.MethodDelete, "/contacts/"+id, nil); err != nil {
		return err
	}
	r.caches.Contacts.Invalidate(ctx)
	return nil
}

// contactPayload builds the upstream request body using the primary alias
// for each field.
func contactPayload(input models.ContactInput) map[string]any {
	payload := map[string]any{
		"fullName":    input.FullName,
		"phoneNumber": input.PhoneNumber,
	}
	if input.Email != "" {
		payload["email"] = input.Email
	}
	return payload
}

func contactLess(a, b models.Contact) bool {
	return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
}

func sortContacts(contacts []models.Contact) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return contactLess(contacts[i], contacts[j])
	})
}
