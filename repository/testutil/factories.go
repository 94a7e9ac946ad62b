package testutil

import (
	"time"

	"raspadinha/models"

	"github.com/google/uuid"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(userID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        userID,
		Username:  username,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(userID int64, username string, balance int64) *models.User {
	user := CreateTestUser(userID, username)
	user.Balance = balance
	return user
}

// CreateTestPlay creates an open play for the given user. The grid is a
// fixed losing layout.
func CreateTestPlay(userID int64, categoryID string, stake int64) *models.Play {
	return &models.Play{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Stake:      stake,
		State:      models.PlayStatePurchased,
		Grid:       []string{"cherry", "lemon", "cherry", "star", "lemon", "star", "seven", "bell", "seven"},
	}
}

// CreateTestWinningPlay creates an open play that pays the given prize.
func CreateTestWinningPlay(userID int64, categoryID string, stake, prize int64, tierID string) *models.Play {
	play := CreateTestPlay(userID, categoryID, stake)
	play.IsWin = true
	play.TierID = &tierID
	play.Prize = prize
	play.Grid = []string{"coin", "coin", "coin", "star", "lemon", "star", "seven", "bell", "seven"}
	return play
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    950,
		ChangeAmount:    -50,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
