package services

import (
	"testing"
	"time"

	"github.com/ravi5775/v1/internal/models"
	"github.com/ravi5775/v1/internal/pagination"
	"github.com/ravi5775/v1/internal/testutil"

	"gorm.io/gorm"
)

// fixedNow pins the clock so status derivation is deterministic.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestLoanService(db *gorm.DB) *loanService {
	return &loanService{db: db, now: func() time.Time { return fixedNow }}
}

func TestCreateLoan(t *testing.T) {
	t.Run("finance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan, err := svc.CreateLoan(CreateLoanInput{
			CustomerName:     "Arun",
			Phone:            "9876543210",
			LoanType:         models.LoanTypeFinance,
			LoanAmount:       10000,
			GivenAmount:      10000,
			InterestRate:     testutil.FloatPtr(2),
			DurationInMonths: testutil.IntPtr(3),
			StartDate:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if loan.ID == 0 {
			t.Fatal("expected non-zero loan ID")
		}
		if loan.Status != models.LoanStatusActive {
			t.Errorf("expected status Active, got %s", loan.Status)
		}
		if loan.CustomerName != "Arun" {
			t.Errorf("expected customer Arun, got %s", loan.CustomerName)
		}
	})

	t.Run("interest_rate_with_custom_duration", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		unit := models.DurationUnitWeeks
		loan, err := svc.CreateLoan(CreateLoanInput{
			CustomerName:  "Bala",
			LoanType:      models.LoanTypeInterestRate,
			LoanAmount:    5000,
			GivenAmount:   5000,
			InterestRate:  testutil.FloatPtr(5),
			DurationValue: testutil.IntPtr(6),
			DurationUnit:  &unit,
			StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if loan.DurationUnit == nil || *loan.DurationUnit != models.DurationUnitWeeks {
			t.Error("expected duration unit to be stored")
		}
	})

	t.Run("mismatched_duration_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		_, err := svc.CreateLoan(CreateLoanInput{
			CustomerName:  "Chitra",
			LoanType:      models.LoanTypeInterestRate,
			LoanAmount:    5000,
			InterestRate:  testutil.FloatPtr(5),
			DurationValue: testutil.IntPtr(6),
			StartDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertAppError(t, err, "INVALID_LOAN_DURATION")
	})
}

func TestGetLoans(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		testutil.CreateTestFinanceLoan(t, db, 20000, 2, 6, start)
		testutil.CreateTestTenderLoan(t, db, 5000, 4500, 30, start)

		result, err := svc.GetLoans(pagination.PageRequest{Page: 1, PageSize: 2}, nil, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Errorf("expected 3 loans, got %d", result.TotalItems)
		}
		if len(result.Data) != 2 {
			t.Errorf("expected page of 2, got %d", len(result.Data))
		}
		if result.TotalPages != 2 {
			t.Errorf("expected 2 pages, got %d", result.TotalPages)
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		testutil.CreateTestTenderLoan(t, db, 5000, 4500, 30, start)

		loanType := models.LoanTypeTender
		result, err := svc.GetLoans(pagination.PageRequest{}, &loanType, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 tender loan, got %d", result.TotalItems)
		}
		if result.Data[0].LoanType != models.LoanTypeTender {
			t.Errorf("expected tender loan, got %s", result.Data[0].LoanType)
		}
	})

	t.Run("filter_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		testutil.CreateTestFinanceLoan(t, db, 20000, 2, 6, start)
		if err := db.Model(loan).Update("status", models.LoanStatusCompleted).Error; err != nil {
			t.Fatalf("failed to update status: %v", err)
		}

		status := models.LoanStatusCompleted
		result, err := svc.GetLoans(pagination.PageRequest{}, nil, &status)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 completed loan, got %d", result.TotalItems)
		}
	})
}

func TestGetLoanByID(t *testing.T) {
	t.Run("with_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		testutil.CreateTestTransaction(t, db, loan.ID, 600, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		got, err := svc.GetLoanByID(loan.ID)
		testutil.AssertNoError(t, err)

		if len(got.Transactions) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
		}
		testutil.AssertAmount(t, 600, got.Transactions[0].Amount, "transaction amount")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		_, err := svc.GetLoanByID(9999)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")
	})
}

func TestUpdateLoan(t *testing.T) {
	t.Run("rederives_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		// Final due date Jun 10, already past the pinned clock.
		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		name := "Renamed"
		updated, err := svc.UpdateLoan(loan.ID, UpdateLoanInput{CustomerName: &name})
		testutil.AssertNoError(t, err)

		if updated.CustomerName != "Renamed" {
			t.Errorf("expected customer Renamed, got %s", updated.CustomerName)
		}
		if updated.Status != models.LoanStatusOverdue {
			t.Errorf("expected status Overdue, got %s", updated.Status)
		}
	})

	t.Run("extending_term_clears_overdue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		updated, err := svc.UpdateLoan(loan.ID, UpdateLoanInput{DurationInMonths: testutil.IntPtr(6)})
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusActive {
			t.Errorf("expected status Active after extension, got %s", updated.Status)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		name := "Nobody"
		_, err := svc.UpdateLoan(9999, UpdateLoanInput{CustomerName: &name})
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")
	})
}

func TestDeleteLoans(t *testing.T) {
	t.Run("bulk_with_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		loan1 := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		loan2 := testutil.CreateTestTenderLoan(t, db, 5000, 4500, 30, start)
		keep := testutil.CreateTestFinanceLoan(t, db, 20000, 2, 6, start)
		testutil.CreateTestTransaction(t, db, loan1.ID, 600, start)

		err := svc.DeleteLoans([]uint{loan1.ID, loan2.ID})
		testutil.AssertNoError(t, err)

		_, err = svc.GetLoanByID(loan1.ID)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")
		_, err = svc.GetLoanByID(loan2.ID)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")

		_, err = svc.GetLoanByID(keep.ID)
		testutil.AssertNoError(t, err)

		var txnCount int64
		if err := db.Model(&models.Transaction{}).Where("loan_id = ?", loan1.ID).Count(&txnCount).Error; err != nil {
			t.Fatalf("failed to count transactions: %v", err)
		}
		if txnCount != 0 {
			t.Errorf("expected transactions to be deleted, found %d", txnCount)
		}
	})

	t.Run("empty_ids", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		err := svc.DeleteLoans(nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAddTransaction(t *testing.T) {
	t.Run("settling_payment_completes_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		updated, err := svc.AddTransaction(loan.ID, 10600, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusCompleted {
			t.Errorf("expected status Completed, got %s", updated.Status)
		}

		var stored models.Loan
		if err := db.First(&stored, loan.ID).Error; err != nil {
			t.Fatalf("failed to reload loan: %v", err)
		}
		if stored.Status != models.LoanStatusCompleted {
			t.Errorf("expected persisted status Completed, got %s", stored.Status)
		}
	})

	t.Run("partial_payment_leaves_overdue", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		// Past its Jun 10 final due date with a balance remaining.
		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		updated, err := svc.AddTransaction(loan.ID, 600, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusOverdue {
			t.Errorf("expected status Overdue, got %s", updated.Status)
		}
	})

	t.Run("interest_rate_overpayment_settles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		// Two compounded months: 1000 -> 1050 -> 1102.50 owed at the pinned clock.
		loan := testutil.CreateTestInterestRateLoan(t, db, 1000, 5, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

		updated, err := svc.AddTransaction(loan.ID, 1200, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusCompleted {
			t.Errorf("expected status Completed, got %s", updated.Status)
		}
	})

	t.Run("loan_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		_, err := svc.AddTransaction(9999, 100, fixedNow)
		testutil.AssertAppError(t, err, "LOAN_NOT_FOUND")
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("reducing_amount_reopens_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestTenderLoan(t, db, 5000, 4500, 60, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		settled, err := svc.AddTransaction(loan.ID, 5000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if settled.Status != models.LoanStatusCompleted {
			t.Fatalf("expected status Completed after full payment, got %s", settled.Status)
		}
		txnID := settled.Transactions[0].ID

		updated, err := svc.UpdateTransaction(loan.ID, txnID, 2000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusActive {
			t.Errorf("expected status Active after reduction, got %s", updated.Status)
		}
		testutil.AssertAmount(t, 2000, updated.Transactions[0].Amount, "transaction amount")
	})

	t.Run("wrong_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)
		start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

		loan1 := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, start)
		loan2 := testutil.CreateTestFinanceLoan(t, db, 20000, 2, 6, start)
		txn := testutil.CreateTestTransaction(t, db, loan1.ID, 600, start)

		_, err := svc.UpdateTransaction(loan2.ID, txn.ID, 700, start)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("transaction_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

		_, err := svc.UpdateTransaction(loan.ID, 9999, 100, fixedNow)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("removal_reopens_loan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestTenderLoan(t, db, 5000, 4500, 60, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		settled, err := svc.AddTransaction(loan.ID, 5000, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		txnID := settled.Transactions[0].ID

		updated, err := svc.DeleteTransaction(loan.ID, txnID)
		testutil.AssertNoError(t, err)

		if updated.Status != models.LoanStatusActive {
			t.Errorf("expected status Active after deletion, got %s", updated.Status)
		}
		if len(updated.Transactions) != 0 {
			t.Errorf("expected no transactions, got %d", len(updated.Transactions))
		}
	})

	t.Run("transaction_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		loan := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))

		_, err := svc.DeleteTransaction(loan.ID, 9999)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetLoanSummary(t *testing.T) {
	t.Run("aggregates_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		finance := testutil.CreateTestFinanceLoan(t, db, 10000, 2, 3, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, finance.ID, 600, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		tender := testutil.CreateTestTenderLoan(t, db, 5000, 4500, 30, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, tender.ID, 5000, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))

		summary, err := svc.GetLoanSummary()
		testutil.AssertNoError(t, err)

		if summary.Totals.Count != 2 {
			t.Errorf("expected 2 loans, got %d", summary.Totals.Count)
		}
		testutil.AssertAmount(t, 15000, summary.Totals.TotalLoaned, "total loaned")
		testutil.AssertAmount(t, 14500, summary.Totals.TotalGiven, "total given")
		testutil.AssertAmount(t, 5600, summary.Totals.TotalPaid, "total paid")
		testutil.AssertAmount(t, 10000, summary.Totals.TotalBalance, "total balance")
		testutil.AssertAmount(t, 1100, summary.Totals.TotalProfit, "total profit")

		fin := summary.ByType[models.LoanTypeFinance]
		if fin.Count != 1 {
			t.Errorf("expected 1 finance loan, got %d", fin.Count)
		}
		testutil.AssertAmount(t, 600, fin.TotalProfit, "finance profit")

		tnd := summary.ByType[models.LoanTypeTender]
		testutil.AssertAmount(t, 0, tnd.TotalBalance, "tender balance")
		testutil.AssertAmount(t, 500, tnd.TotalProfit, "tender profit")
	})

	t.Run("empty_book", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestLoanService(db)

		summary, err := svc.GetLoanSummary()
		testutil.AssertNoError(t, err)

		if summary.Totals.Count != 0 {
			t.Errorf("expected empty summary, got %d loans", summary.Totals.Count)
		}
		if len(summary.ByType) != 0 {
			t.Errorf("expected no type entries, got %d", len(summary.ByType))
		}
	})
}
