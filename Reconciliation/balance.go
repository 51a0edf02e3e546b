package Reconciliation

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/petrisor1218/spectra-logistics-saas-sub000/Models"
)

// UpsertInvoiced merges a run's gross invoiced totals into the persistent
// per-company balances for the period. Totals are replaced, not added, so
// re-running a batch never double-counts.
func UpsertInvoiced(db *gorm.DB, ctx *ResolutionContext, periodLabel string, result *Result) error {
	for name, entry := range result.Ledger {
		company := ctx.CompanyNamed(name)
		if company == nil {
			return fmt.Errorf("ledger references unknown company %q", name)
		}
		balance, err := loadOrInitBalance(db, company.ID, periodLabel)
		if err != nil {
			return err
		}
		balance.TotalInvoiced = entry.Total7.Add(entry.Total30)
		balance.Recompute()
		if err := db.Save(balance).Error; err != nil {
			return err
		}
	}
	return nil
}

// ApplyPayment records a payment and rolls it into the period balance.
// Outstanding is clamped at zero by Recompute regardless of the amount.
func ApplyPayment(db *gorm.DB, companyID uint, periodLabel string, amount decimal.Decimal, date time.Time) (*Models.CompanyBalance, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	payment := Models.Payment{
		CompanyID:   companyID,
		PeriodLabel: periodLabel,
		Amount:      amount,
		Date:        date,
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}

	balance, err := loadOrInitBalance(db, companyID, periodLabel)
	if err != nil {
		return nil, err
	}
	balance.TotalPaid = balance.TotalPaid.Add(amount)
	balance.Recompute()
	if err := db.Save(balance).Error; err != nil {
		return nil, err
	}
	return balance, nil
}

// ReversePayment undoes a recorded payment: the running paid total is
// decremented and the payment row soft-deleted, keeping history intact.
// Applying then reversing the same payment restores the balance exactly.
func ReversePayment(db *gorm.DB, paymentID uint) (*Models.CompanyBalance, error) {
	var payment Models.Payment
	if err := db.First(&payment, paymentID).Error; err != nil {
		return nil, err
	}

	balance, err := loadOrInitBalance(db, payment.CompanyID, payment.PeriodLabel)
	if err != nil {
		return nil, err
	}
	balance.TotalPaid = balance.TotalPaid.Sub(payment.Amount)
	if balance.TotalPaid.IsNegative() {
		balance.TotalPaid = decimal.Zero
	}
	balance.Recompute()
	if err := db.Save(balance).Error; err != nil {
		return nil, err
	}
	if err := db.Delete(&payment).Error; err != nil {
		return nil, err
	}
	return balance, nil
}

// BalanceFor returns the balance row for a company and period.
func BalanceFor(db *gorm.DB, companyID uint, periodLabel string) (*Models.CompanyBalance, error) {
	var balance Models.CompanyBalance
	err := db.Where("company_id = ? AND period_label = ?", companyID, periodLabel).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func loadOrInitBalance(db *gorm.DB, companyID uint, periodLabel string) (*Models.CompanyBalance, error) {
	var balance Models.CompanyBalance
	err := db.Where("company_id = ? AND period_label = ?", companyID, periodLabel).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = Models.CompanyBalance{
			CompanyID:     companyID,
			PeriodLabel:   periodLabel,
			TotalInvoiced: decimal.Zero,
			TotalPaid:     decimal.Zero,
			Outstanding:   decimal.Zero,
			Status:        Models.BalanceStatusPending,
		}
		return &balance, nil
	}
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
