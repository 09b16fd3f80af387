package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qarzbook/ledgercore/internal/apperrors"
	"github.com/qarzbook/ledgercore/internal/models"
)

func TestCreateContact_ValidationFailureSkipsTransport(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	_, err := repo.CreateContact(ctx, models.ContactInput{
		FullName:    "A",
		PhoneNumber: "123",
	})

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidationFailed, appErr.Kind)
	assert.Contains(t, appErr.Fields, "fullName")
	assert.Contains(t, appErr.Fields, "phoneNumber")
	tr.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateContact_InvalidatesContactsSlot(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"}]`), nil).Once()
	repo.ListContacts(ctx, false)

	tr.On("Request", mock.Anything, "POST", "/contacts", mock.Anything).
		Return(okEnvelope(`{"id":"c2","fullName":"Bek","phoneNumber":"998901234567"}`), nil).Once()
	created, err := repo.CreateContact(ctx, models.ContactInput{
		FullName:    "Bek",
		PhoneNumber: "+998 90 123 45 67",
	})
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)

	// The next list must refetch and include the new contact.
	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"},{"id":"c2","fullName":"Bek"}]`), nil).Once()
	contacts := repo.ListContacts(ctx, false)
	require.Len(t, contacts, 2)
	tr.AssertExpectations(t)
}

func TestGetContact_FreshensCachedSlot(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"},{"id":"c2","fullName":"Bek"}]`), nil).Once()
	repo.ListContacts(ctx, false)

	tr.On("Request", mock.Anything, "GET", "/contacts/c1", nil).
		Return(okEnvelope(`{"id":"c1","fullName":"Anastasia","phoneNumber":"998901112233"}`), nil).Once()
	contact, err := repo.GetContact(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Anastasia", contact.FullName)

	// Still served from the same slot, now carrying the fresher record.
	contacts := repo.ListContacts(ctx, false)
	require.Len(t, contacts, 2)
	names := []string{contacts[0].FullName, contacts[1].FullName}
	assert.Contains(t, names, "Anastasia")
	tr.AssertExpectations(t)
}

func TestGetContact_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts/ghost", nil).
		Return(failEnvelope(404, "contact not found"), nil).Once()

	_, err := repo.GetContact(ctx, "ghost")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateContact_EmptyBodySynthesizesRecord(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "PUT", "/contacts/c1", mock.Anything).
		Return(okEnvelope(`null`), nil).Once()

	updated, err := repo.UpdateContact(ctx, "c1", models.ContactInput{
		FullName:    "Ana Karimova",
		PhoneNumber: "998901234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", updated.ID)
	assert.Equal(t, "Ana Karimova", updated.FullName)
}

func TestDeleteContact_BlockedByActiveDebts(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/debts?contactId=c1", nil).
		Return(okEnvelope(`[
			{"recordId":"d1","contactId":"c1","amount":50,"createdDate":"2024-03-01T00:00:00Z"},
			{"recordId":"d2","contactId":"c1","amount":20,"isPaidBack":true,"createdDate":"2024-02-01T00:00:00Z"}
		]`), nil).Once()

	err := repo.DeleteContact(ctx, "c1")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Equal(t, "1", appErr.Fields["activeDebts"])
	tr.AssertNotCalled(t, "Request", mock.Anything, "DELETE", "/contacts/c1", nil)
}

func TestDeleteContact_AllowedWhenDebtsSettled(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/debts?contactId=c1", nil).
		Return(okEnvelope(`[{"recordId":"d1","contactId":"c1","amount":50,"isPaidBack":true,"createdDate":"2024-02-01T00:00:00Z"}]`), nil).Once()
	tr.On("Request", mock.Anything, "DELETE", "/contacts/c1", nil).
		Return(okEnvelope(`null`), nil).Once()

	require.NoError(t, repo.DeleteContact(ctx, "c1"))
	tr.AssertExpectations(t)
}

func TestDeleteContact_FailsClosedOnUnknownDebtState(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/debts?contactId=c1", nil).
		Return(nil, assert.AnError).Once()
	tr.On("Request", mock.Anything, "GET", "/debts", nil).
		Return(nil, assert.AnError).Once()

	err := repo.DeleteContact(ctx, "c1")
	require.True(t, apperrors.IsKind(err, apperrors.KindTransportError),
		"unconfirmed debt state must block the delete")
	tr.AssertNotCalled(t, "Request", mock.Anything, "DELETE", "/contacts/c1", nil)
}

func TestDeleteContact_VerifiesViaFullRefreshWhenFilterUnavailable(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/debts?contactId=c1", nil).
		Return(failEnvelope(501, "filtering not implemented"), nil).Once()
	tr.On("Request", mock.Anything, "GET", "/debts", nil).
		Return(okEnvelope(`[{"recordId":"d1","contactId":"other","amount":50,"createdDate":"2024-03-01T00:00:00Z"}]`), nil).Once()
	tr.On("Request", mock.Anything, "DELETE", "/contacts/c1", nil).
		Return(okEnvelope(`null`), nil).Once()

	require.NoError(t, repo.DeleteContact(ctx, "c1"))
	tr.AssertExpectations(t)
}

func TestGetContact_RenameKeepsCachedOrder(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "GET", "/contacts", nil).
		Return(okEnvelope(`[{"id":"c1","fullName":"Ana"},{"id":"c2","fullName":"Bek"}]`), nil).Once()
	repo.ListContacts(ctx, false)

	tr.On("Request", mock.Anything, "GET", "/contacts/c1", nil).
		Return(okEnvelope(`{"id":"c1","fullName":"Zed","phoneNumber":"998901112233"}`), nil).Once()
	_, err := repo.GetContact(ctx, "c1")
	require.NoError(t, err)

	contacts := repo.ListContacts(ctx, false)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Bek", contacts[0].FullName, "renamed contact must not hold its old position")
	assert.Equal(t, "Zed", contacts[1].FullName)
	tr.AssertExpectations(t)
}

func TestCreateContact_UpstreamConflict(t *testing.T) {
	ctx := context.Background()
	repo, tr := newTestRepo(t)

	tr.On("Request", mock.Anything, "POST", "/contacts", mock.Anything).
		Return(failEnvelope(409, "phone number already registered"), nil).Once()

	_, err := repo.CreateContact(ctx, models.ContactInput{
		FullName:    "Bek",
		PhoneNumber: "998901234567",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "phone number already registered")
}
