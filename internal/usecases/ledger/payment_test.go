package ledger

import (
	"context"
	"testing"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

func TestSelectPackCreatesTransactionAndInvoice(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	if err := f.svc.SelectPack(ctx, user, 5, 30); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}

	if len(f.transactions.transactions) != 1 {
		t.Fatalf("expected one transaction, got %d", len(f.transactions.transactions))
	}
	var transaction *domain.Transaction
	for _, tr := range f.transactions.transactions {
		transaction = tr
	}
	if transaction.State != domain.TransactionCreated || !transaction.IsActive {
		t.Errorf("unexpected transaction: %+v", transaction)
	}
	if transaction.Amount != 5 || transaction.Price != 30 {
		t.Errorf("expected pack 5/30, got %d/%d", transaction.Amount, transaction.Price)
	}

	if len(f.telegram.invoices) != 1 {
		t.Fatalf("expected one invoice, got %d", len(f.telegram.invoices))
	}
	invoice := f.telegram.invoices[0]
	if invoice.Payload != transaction.ID.String() {
		t.Errorf("expected invoice payload = transaction id, got %q", invoice.Payload)
	}
	if invoice.Currency != "XTR" || invoice.Amount != 30 {
		t.Errorf("unexpected invoice: %+v", invoice)
	}
}

func TestSelectPackCancelsPreviousActive(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	if err := f.svc.SelectPack(ctx, user, 2, 15); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}
	firstID := f.telegram.invoices[0].Payload

	if err := f.svc.SelectPack(ctx, user, 10, 60); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}

	first := f.transactions.transactions[uuid.MustParse(firstID)]
	if first.IsActive || first.State != domain.TransactionCanceled {
		t.Errorf("expected first transaction canceled, got %+v", first)
	}

	active := 0
	for _, tr := range f.transactions.transactions {
		if tr.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active transaction, got %d", active)
	}
}

func TestSelectPackUnknownPackIgnored(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	if err := f.svc.SelectPack(ctx, user, 999, 1); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}
	if len(f.transactions.transactions) != 0 || len(f.telegram.invoices) != 0 {
		t.Error("expected unknown pack to be ignored")
	}
}

func TestHandlePreCheckoutApprovesOnlyOnce(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	if err := f.svc.SelectPack(ctx, user, 2, 15); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}
	payload := f.telegram.invoices[0].Payload

	if err := f.svc.HandlePreCheckout(ctx, "q1", payload); err != nil {
		t.Fatalf("HandlePreCheckout: %v", err)
	}
	if err := f.svc.HandlePreCheckout(ctx, "q2", payload); err != nil {
		t.Fatalf("HandlePreCheckout (duplicate): %v", err)
	}

	if len(f.telegram.answers) != 2 {
		t.Fatalf("expected two answers, got %d", len(f.telegram.answers))
	}
	if !f.telegram.answers[0].ok {
		t.Error("expected first pre-checkout approved")
	}
	if f.telegram.answers[1].ok {
		t.Error("expected duplicate pre-checkout declined")
	}
}

func TestHandlePreCheckoutMalformedPayloadDeclined(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()

	if err := f.svc.HandlePreCheckout(ctx, "q1", "not-a-uuid"); err != nil {
		t.Fatalf("HandlePreCheckout: %v", err)
	}
	if len(f.telegram.answers) != 1 || f.telegram.answers[0].ok {
		t.Error("expected malformed payload declined")
	}
}

func TestHandlePaymentConfirmedCreditsExactlyOnce(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	if err := f.svc.SelectPack(ctx, user, 5, 30); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}
	payload := f.telegram.invoices[0].Payload
	if err := f.svc.HandlePreCheckout(ctx, "q1", payload); err != nil {
		t.Fatalf("HandlePreCheckout: %v", err)
	}

	if err := f.svc.HandlePaymentConfirmed(ctx, user, payload, "tg-charge", "provider-charge"); err != nil {
		t.Fatalf("HandlePaymentConfirmed: %v", err)
	}
	// Дубль доставки successful_payment
	if err := f.svc.HandlePaymentConfirmed(ctx, user, payload, "tg-charge", "provider-charge"); err != nil {
		t.Fatalf("HandlePaymentConfirmed (duplicate): %v", err)
	}

	if f.users.users[user.ID].Credits != 5 {
		t.Errorf("expected exactly one crediting of 5, balance %d", f.users.users[user.ID].Credits)
	}

	transaction := f.transactions.transactions[uuid.MustParse(payload)]
	if transaction.State != domain.TransactionDone || transaction.IsActive {
		t.Errorf("unexpected final transaction: %+v", transaction)
	}
	if transaction.TelegramPaymentChargeID == nil || *transaction.TelegramPaymentChargeID != "tg-charge" {
		t.Error("expected telegram charge id recorded")
	}
}

func TestHandlePaymentConfirmedResumesParkedSession(t *testing.T) {
	f := newLedgerFixture()
	user := f.addUser(0)
	ctx := context.Background()

	// Сессия припаркована в ожидании кредитов с готовым промптом
	if err := f.flow.HandlePhoto(ctx, user, "photo-1"); err != nil {
		t.Fatalf("HandlePhoto: %v", err)
	}
	if err := f.flow.HandleDescription(ctx, user, "watercolor"); err != nil {
		t.Fatalf("HandleDescription: %v", err)
	}
	parked, _ := f.sessions.GetActiveByUser(ctx, user.ID)
	if parked.State != domain.SessionWaitBuyCredit {
		t.Fatalf("expected parked session, got %s", parked.State)
	}

	if err := f.svc.SelectPack(ctx, user, 2, 15); err != nil {
		t.Fatalf("SelectPack: %v", err)
	}
	payload := f.telegram.invoices[0].Payload
	if err := f.svc.HandlePreCheckout(ctx, "q1", payload); err != nil {
		t.Fatalf("HandlePreCheckout: %v", err)
	}
	if err := f.svc.HandlePaymentConfirmed(ctx, user, payload, "tg-charge", "provider-charge"); err != nil {
		t.Fatalf("HandlePaymentConfirmed: %v", err)
	}

	session, _ := f.sessions.GetActiveByUser(ctx, user.ID)
	if session.State != domain.SessionProcessing {
		t.Errorf("expected auto-resumed session in processing, got %s", session.State)
	}
	if len(f.jobs.jobs) != 1 {
		t.Errorf("expected one job enqueued after resume, got %d", len(f.jobs.jobs))
	}
	if f.users.users[user.ID].Credits != 1 {
		t.Errorf("expected balance 1 after crediting 2 and debiting 1, got %d", f.users.users[user.ID].Credits)
	}
}
