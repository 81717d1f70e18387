package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RKapadia01/shopezy_backend/config"
	"github.com/RKapadia01/shopezy_backend/middleware"
	"github.com/RKapadia01/shopezy_backend/models"
	"github.com/RKapadia01/shopezy_backend/repositories"
)

type WalletController struct {
	db     *mongo.Client
	wallet repositories.WalletStore
}

func NewWalletController(db *mongo.Client, wallet repositories.WalletStore) *WalletController {
	return &WalletController{db: db, wallet: wallet}
}

func (wc *WalletController) currentUserID(c echo.Context) (primitive.ObjectID, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(userID)
}

// GetBalance returns the authenticated user's wallet balance
func (wc *WalletController) GetBalance(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := wc.currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	user, err := wc.wallet.FindUser(ctx, userID)
	if err != nil {
		if err == repositories.ErrAccountNotFound {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch wallet balance",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallet balance retrieved successfully",
		Data: map[string]interface{}{
			"walletBalance": user.WalletBalance,
		},
	})
}

// GetTransactions returns the authenticated user's ledger, newest first
func (wc *WalletController) GetTransactions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := wc.currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	transactions, err := wc.wallet.TransactionsByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch wallet transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Wallet transactions retrieved successfully",
		Data:    transactions,
	})
}

// RequestWithdrawal debits the wallet and files a pending withdrawal
// request. The debit and its ledger entry commit atomically; an
// insufficient balance rejects the request with no effect.
func (wc *WalletController) RequestWithdrawal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID, err := wc.currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	var req models.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Withdrawal amount must be greater than zero",
		})
	}

	withdrawal := models.Withdrawal{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Amount:    req.Amount,
		Status:    "pending",
		UserNote:  req.UserNote,
		CreatedAt: time.Now(),
	}

	err = wc.wallet.WithTransaction(ctx, func(txCtx context.Context) error {
		user, err := wc.wallet.FindUser(txCtx, userID)
		if err != nil {
			return err
		}
		if user.WalletBalance < req.Amount {
			return errInsufficientBalance
		}

		if _, err := wc.wallet.IncrementBalance(txCtx, userID, -req.Amount); err != nil {
			return err
		}
		entry := &models.WalletTransaction{
			UserID:      userID,
			Amount:      -req.Amount,
			Type:        models.TransactionTypeWithdrawal,
			Description: fmt.Sprintf("Withdrawal request %s", withdrawal.ID.Hex()),
		}
		if err := wc.wallet.AppendTransaction(txCtx, entry); err != nil {
			return err
		}

		withdrawalsCollection := config.GetCollection(wc.db, "withdrawals")
		if _, err := withdrawalsCollection.InsertOne(txCtx, withdrawal); err != nil {
			return fmt.Errorf("failed to file withdrawal request: %w", err)
		}
		return nil
	})
	if err != nil {
		if err == errInsufficientBalance {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Insufficient wallet balance",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process withdrawal request",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request submitted",
		Data:    withdrawal,
	})
}

var errInsufficientBalance = fmt.Errorf("insufficient wallet balance")
