package decode

// Backend field names drift across deployments. Every known spelling for a
// canonical field lives here, in resolution order: the first present,
// non-null key wins. Add new aliases to these tables only, never inline at a
// call site.

var contactAliases = struct {
	id, fullName, phoneNumber, email []string
}{
	id:          []string{"id", "userId", "contactId", "_id"},
	fullName:    []string{"fullName", "full_name", "name", "userName"},
	phoneNumber: []string{"phoneNumber", "phone_number", "phone", "mobile"},
	email:       []string{"email", "emailAddress", "email_address"},
}

var debtAliases = struct {
	recordID, contactID, contactName, amount, description,
	createdDate, dueDate, isMyDebt, isPaidBack []string
}{
	recordID:    []string{"recordId", "id", "debtId", "_id"},
	contactID:   []string{"contactId", "userId", "contact_id"},
	contactName: []string{"contactName", "contact_name", "name"},
	amount:      []string{"amount", "debt_amount", "paidAmount"},
	description: []string{"description", "note", "desc"},
	createdDate: []string{"createdDate", "createdAt", "created_at", "date"},
	dueDate:     []string{"dueDate", "due_date", "deadline"},
	isMyDebt:    []string{"isMyDebt", "is_my_debt", "myDebt"},
	isPaidBack:  []string{"isPaidBack", "is_paid_back", "paid", "isPaid"},
}

var paymentAliases = struct {
	paymentID, originalDebtID, contactName, paidAmount,
	paymentDescription, paymentDate, wasMyDebt []string
}{
	paymentID:          []string{"paymentId", "id", "_id"},
	originalDebtID:     []string{"originalDebtId", "debtId", "original_debt_id", "recordId"},
	contactName:        []string{"contactName", "contact_name", "name"},
	paidAmount:         []string{"paidAmount", "amount", "paid_amount"},
	paymentDescription: []string{"paymentDescription", "description", "note"},
	paymentDate:        []string{"paymentDate", "payment_date", "paidAt", "date"},
	wasMyDebt:          []string{"wasMyDebt", "isMyDebt", "was_my_debt"},
}

var overviewAliases = struct {
	totalIOwe, totalTheyOwe, activeCount, overdueCount []string
}{
	totalIOwe:    []string{"totalIOwe", "total_i_owe", "totalOwedByMe"},
	totalTheyOwe: []string{"totalTheyOwe", "total_they_owe", "totalOwedToMe"},
	activeCount:  []string{"activeCount", "active_count", "activeDebts"},
	overdueCount: []string{"overdueCount", "overdue_count", "overdueDebts"},
}

// Collection payload keys tried by the plural unwrap, per entity.
const (
	PluralContacts = "contacts"
	PluralDebts    = "debts"
	PluralPayments = "payments"
)
