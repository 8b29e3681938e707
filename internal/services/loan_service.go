package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "paisa/internal/errors"
	"paisa/internal/ledger"
	"paisa/internal/logger"
	"paisa/internal/models"
)

// loanService handles person-to-person loan business logic. Every loan owns
// a linked ledger account whose balance mirrors the outstanding principal,
// so loans show up on the balance sheet like any other account.
type loanService struct {
	db *gorm.DB
}

// NewLoanService creates a new LoanServicer.
func NewLoanService(db *gorm.DB) LoanServicer {
	return &loanService{db: db}
}

func loanAccountName(loanType models.LoanType, personName string) string {
	if loanType == models.LoanTypeTaken {
		return "Loan from " + personName
	}
	return "Loan to " + personName
}

func loanAccountCategory(loanType models.LoanType) models.AccountCategory {
	if loanType == models.LoanTypeTaken {
		return models.AccountCategoryLoanPayable
	}
	return models.AccountCategoryLoanReceivable
}

// CreateLoan opens a loan and its linked account atomically. The account's
// opening balance is the principal, so the balance sheet immediately reflects
// the receivable or payable.
func (s *loanService) CreateLoan(in LoanInput) (*models.Loan, error) {
	if in.PersonName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person name is required")
	}
	if in.Principal <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "principal must be positive")
	}
	if in.InterestRate < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now()
	}

	loan := &models.Loan{
		PersonName:   in.PersonName,
		Type:         in.Type,
		Principal:    in.Principal,
		InterestRate: in.InterestRate,
		StartDate:    in.StartDate,
		Notes:        in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		account := &models.Account{
			Name:           loanAccountName(in.Type, in.PersonName),
			Category:       loanAccountCategory(in.Type),
			OpeningBalance: in.Principal,
			CurrentBalance: in.Principal,
			PersonName:     in.PersonName,
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		loan.AccountID = account.ID
		if err := tx.Create(loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLoanByID(loan.ID)
}

// GetLoans lists loans, optionally filtered by direction, newest first.
func (s *loanService) GetLoans(loanType *models.LoanType) ([]models.Loan, error) {
	query := s.db.Model(&models.Loan{})
	if loanType != nil {
		query = query.Where("type = ?", *loanType)
	}

	var loans []models.Loan
	if err := query.Preload("Account").Order("created_at DESC").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return loans, nil
}

// GetLoanByID retrieves a loan with its account and repayment history.
func (s *loanService) GetLoanByID(id string) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.Where("id = ?", id).
		Preload("Account").
		Preload("Repayments", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		}).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}

// UpdateLoan edits the descriptive fields. A person rename flows through to
// the linked account's name. Principal and start date are immutable.
func (s *loanService) UpdateLoan(id string, personName, notes *string, interestRate *float64) (*models.Loan, error) {
	loan, err := s.GetLoanByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if personName != nil {
		if *personName == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person name cannot be empty")
		}
		updates["person_name"] = *personName
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if interestRate != nil {
		if *interestRate < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest rate cannot be negative")
		}
		updates["interest_rate"] = *interestRate
	}
	if len(updates) == 0 {
		return loan, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(loan).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if personName != nil {
			accountUpdates := map[string]interface{}{
				"name":        loanAccountName(loan.Type, *personName),
				"person_name": *personName,
			}
			if err := tx.Model(&models.Account{}).Where("id = ?", loan.AccountID).
				Updates(accountUpdates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetLoanByID(id)
}

// DeleteLoan removes a loan with its repayments and linked account.
func (s *loanService) DeleteLoan(id string) error {
	loan, err := s.GetLoanByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", id).Delete(&models.LoanRepayment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.Loan{}, "id = ?", id).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.Account{}, "id = ?", loan.AccountID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// RecordRepayment books a payment against a loan. Principal repayments
// reduce the outstanding balance on the linked account; interest payments
// only accumulate on the loan. Over-repayment is allowed but logged, since
// it usually means an entry error.
func (s *loanService) RecordRepayment(loanID string, amount int64, date time.Time, isInterest bool, notes string) (*models.LoanRepayment, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	loan, err := s.GetLoanByID(loanID)
	if err != nil {
		return nil, err
	}

	repayment := &models.LoanRepayment{
		LoanID:     loanID,
		Amount:     amount,
		Date:       date,
		IsInterest: isInterest,
		Notes:      notes,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repayment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if isInterest {
			return tx.Model(loan).
				Update("interest_paid", gorm.Expr("interest_paid + ?", amount)).Error
		}

		if err := tx.Model(loan).
			Update("total_repaid", gorm.Expr("total_repaid + ?", amount)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return ledger.ApplyByID(tx, loan.AccountID, ledger.RepaymentEffect(loan.Type), amount)
	})
	if err != nil {
		return nil, err
	}

	if !isInterest && loan.TotalRepaid+amount > loan.Principal {
		logger.Get().Warnw("Loan over-repaid",
			"loan_id", loanID, "principal", loan.Principal, "total_repaid", loan.TotalRepaid+amount)
	}

	return repayment, nil
}

// AccruedInterest computes interest accrued between the loan's start date and
// asOf, in paise. Simple interest is P*r/100*days/365; compound interest
// compounds daily at r/365. Days before the start date count as zero.
func (s *loanService) AccruedInterest(loanID string, mode models.InterestMode, asOf time.Time) (int64, error) {
	loan, err := s.GetLoanByID(loanID)
	if err != nil {
		return 0, err
	}

	days := int64(asOf.Sub(loan.StartDate).Hours() / 24)
	if days <= 0 || loan.InterestRate == 0 {
		return 0, nil
	}

	principal := decimal.NewFromInt(loan.Principal)
	rate := decimal.NewFromFloat(loan.InterestRate)

	var interest decimal.Decimal
	switch mode {
	case models.InterestModeCompound:
		// P * ((1 + r/36500)^days - 1), daily compounding.
		daily := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(36500)))
		factor := daily.Pow(decimal.NewFromInt(days))
		interest = principal.Mul(factor.Sub(decimal.NewFromInt(1)))
	default:
		// P * r/100 * days/365.
		interest = principal.
			Mul(rate).
			Mul(decimal.NewFromInt(days)).
			Div(decimal.NewFromInt(36500))
	}

	return interest.Round(0).IntPart(), nil
}
