package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionState состояние платёжной транзакции.
// Переходы строго монотонные: created -> processed -> done,
// canceled достижим из created/processed при выборе нового пакета.
// Каждый переход выполняется условным UPDATE по точному прежнему состоянию.
type TransactionState string

const (
	TransactionCreated   TransactionState = "created"
	TransactionProcessed TransactionState = "processed"
	TransactionDone      TransactionState = "done"
	TransactionCanceled  TransactionState = "canceled"
)

// Transaction одна попытка оплаты. Инвариант: не больше одной активной
// транзакции на пользователя; done начисляет кредиты ровно один раз.
type Transaction struct {
	ID                      uuid.UUID        `json:"id" db:"id"`
	UserID                  uuid.UUID        `json:"user_id" db:"user_id"`
	Amount                  int              `json:"amount" db:"amount"` // кредиты к начислению
	Price                   int              `json:"price" db:"price"`   // цена в звёздах
	State                   TransactionState `json:"state" db:"state"`
	IsActive                bool             `json:"is_active" db:"is_active"`
	PreCheckoutQueryID      *string          `json:"pre_checkout_query_id,omitempty" db:"pre_checkout_query_id"`
	TelegramPaymentChargeID *string          `json:"telegram_payment_charge_id,omitempty" db:"telegram_payment_charge_id"`
	ProviderPaymentChargeID *string          `json:"provider_payment_charge_id,omitempty" db:"provider_payment_charge_id"`
	CreatedAt               time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at" db:"updated_at"`
}

// CreditPack пакет кредитов за звёзды
type CreditPack struct {
	Credits int
	Price   int
}

// CreditPacks доступные пакеты пополнения
var CreditPacks = []CreditPack{
	{Credits: 2, Price: 15},
	{Credits: 5, Price: 30},
	{Credits: 10, Price: 60},
	{Credits: 20, Price: 100},
}

// FindCreditPack проверяет, что пара credits/price соответствует реальному пакету
func FindCreditPack(credits, price int) (CreditPack, bool) {
	for _, pack := range CreditPacks {
		if pack.Credits == credits && pack.Price == price {
			return pack, true
		}
	}
	return CreditPack{}, false
}
