package statementservice

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-petr/fin-ledger/internal/domain"
	"github.com/go-petr/fin-ledger/pkg/configpkg"
	"github.com/go-petr/fin-ledger/pkg/errorspkg"
	"github.com/go-petr/fin-ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func randomUser() domain.User {
	return domain.User{
		ID:        randompkg.UUID(),
		Name:      randompkg.Name(),
		Email:     randompkg.Email(),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func statementFor(user domain.User, st domain.StatementType, amount string) domain.Statement {
	return domain.Statement{
		ID:          randompkg.UUID(),
		UserID:      user.ID,
		Type:        st,
		Amount:      amount,
		Description: "test description",
		CreatedAt:   time.Now().Truncate(time.Second).UTC(),
	}
}

func TestBalance(t *testing.T) {
	user := randomUser()

	testCases := []struct {
		name       string
		statements []domain.Statement
		want       string
	}{
		{
			name:       "EmptyHistory",
			statements: []domain.Statement{},
			want:       "0",
		},
		{
			name: "SingleDeposit",
			statements: []domain.Statement{
				statementFor(user, domain.Deposit, "100"),
			},
			want: "100",
		},
		{
			name: "DepositsAndWithdrawals",
			statements: []domain.Statement{
				statementFor(user, domain.Deposit, "100"),
				statementFor(user, domain.Deposit, "49.95"),
				statementFor(user, domain.Withdraw, "30.5"),
			},
			want: "119.45",
		},
		{
			name: "FullWithdrawal",
			statements: []domain.Statement{
				statementFor(user, domain.Deposit, "100"),
				statementFor(user, domain.Withdraw, "100"),
			},
			want: "0",
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			got := Balance(tc.statements)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestCreate(t *testing.T) {
	user := randomUser()

	testCases := []struct {
		name          string
		arg           domain.CreateStatementParams
		rounding      string
		buildStubs    func(repo *MockRepo, userRepo *MockUserRepo)
		checkResponse func(t *testing.T, got domain.Statement, err error)
	}{
		{
			name: "DepositOK",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Deposit,
				Amount:      "100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)

				arg := domain.CreateStatementParams{
					UserID:      user.ID,
					Type:        domain.Deposit,
					Amount:      "100",
					Description: "test description",
				}

				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(statementFor(user, domain.Deposit, "100"), nil)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.Deposit, got.Type)
				require.Equal(t, "100", got.Amount)
				require.Equal(t, user.ID, got.UserID)
				require.NotEmpty(t, got.ID)
			},
		},
		{
			name: "UserNotFound",
			arg: domain.CreateStatementParams{
				UserID:      "1234",
				Type:        domain.Deposit,
				Amount:      "100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq("1234")).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrUserNotFound)
				require.Empty(t, got)
			},
		},
		{
			name: "InsufficientFunds",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Withdraw,
				Amount:      "150",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return([]domain.Statement{statementFor(user, domain.Deposit, "100")}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
				require.Empty(t, got)
			},
		},
		{
			name: "WithdrawFullBalance",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Withdraw,
				Amount:      "100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return([]domain.Statement{statementFor(user, domain.Deposit, "100")}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(statementFor(user, domain.Withdraw, "100"), nil)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.NoError(t, err)
				require.Equal(t, domain.Withdraw, got.Type)
				require.Equal(t, "100", got.Amount)
			},
		},
		{
			name: "UnparseableAmount",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Deposit,
				Amount:      "!@#$",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "NegativeAmount",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Withdraw,
				Amount:      "-100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "ZeroAmount",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Deposit,
				Amount:      "0",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "ExcessPrecisionRejected",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Deposit,
				Amount:      "10.555",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
			},
		},
		{
			name: "ExcessPrecisionTruncated",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Deposit,
				Amount:      "10.555",
				Description: "test description",
			},
			rounding: configpkg.AmountRoundingTruncate,
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)

				arg := domain.CreateStatementParams{
					UserID:      user.ID,
					Type:        domain.Deposit,
					Amount:      "10.55",
					Description: "test description",
				}

				repo.EXPECT().Create(gomock.Any(), gomock.Eq(arg)).
					Times(1).
					Return(statementFor(user, domain.Deposit, "10.55"), nil)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.NoError(t, err)
				require.Equal(t, "10.55", got.Amount)
			},
		},
		{
			name: "EmptyDescription",
			arg: domain.CreateStatementParams{
				UserID: user.ID,
				Type:   domain.Deposit,
				Amount: "100",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrEmptyDescription)
			},
		},
		{
			name: "InvalidType",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.StatementType("transfer"),
				Amount:      "100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidStatementType)
			},
		},
		{
			name: "ListError",
			arg: domain.CreateStatementParams{
				UserID:      user.ID,
				Type:        domain.Withdraw,
				Amount:      "100",
				Description: "test description",
			},
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			userRepo := NewMockUserRepo(ctrl)
			tc.buildStubs(repo, userRepo)

			rounding := tc.rounding
			if rounding == "" {
				rounding = configpkg.AmountRoundingReject
			}

			service := New(repo, userRepo, rounding)

			got, err := service.Create(context.Background(), tc.arg)
			tc.checkResponse(t, got, err)
		})
	}
}

func TestGetBalance(t *testing.T) {
	user := randomUser()

	history := []domain.Statement{
		statementFor(user, domain.Deposit, "100"),
		statementFor(user, domain.Deposit, "50"),
		statementFor(user, domain.Withdraw, "30"),
	}

	testCases := []struct {
		name          string
		userID        string
		buildStubs    func(repo *MockRepo, userRepo *MockUserRepo)
		checkResponse func(t *testing.T, got domain.Balance, err error)
	}{
		{
			name:   "OK",
			userID: user.ID,
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(history, nil)
			},
			checkResponse: func(t *testing.T, got domain.Balance, err error) {
				require.NoError(t, err)
				require.Equal(t, history, got.Statement)
				require.Equal(t, json.Number("120"), got.Balance)
			},
		},
		{
			name:   "EmptyHistory",
			userID: user.ID,
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return([]domain.Statement{}, nil)
			},
			checkResponse: func(t *testing.T, got domain.Balance, err error) {
				require.NoError(t, err)
				require.Empty(t, got.Statement)
				require.Equal(t, json.Number("0"), got.Balance)
			},
		},
		{
			name:   "UserNotFound",
			userID: "1234",
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq("1234")).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
				repo.EXPECT().List(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Balance, err error) {
				require.ErrorIs(t, err, domain.ErrUserNotFound)
				require.Empty(t, got)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			userRepo := NewMockUserRepo(ctrl)
			tc.buildStubs(repo, userRepo)

			service := New(repo, userRepo, configpkg.AmountRoundingReject)

			got, err := service.GetBalance(context.Background(), tc.userID)
			tc.checkResponse(t, got, err)
		})
	}
}

func TestGetBalanceIsIdempotent(t *testing.T) {
	user := randomUser()
	history := []domain.Statement{statementFor(user, domain.Deposit, "100")}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)

	userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).Times(2).Return(user, nil)
	repo.EXPECT().List(gomock.Any(), gomock.Eq(user.ID)).Times(2).Return(history, nil)

	service := New(repo, userRepo, configpkg.AmountRoundingReject)

	first, err := service.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)

	second, err := service.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestGet(t *testing.T) {
	user := randomUser()
	statement := statementFor(user, domain.Deposit, "100")

	testCases := []struct {
		name          string
		statementID   string
		userID        string
		buildStubs    func(repo *MockRepo, userRepo *MockUserRepo)
		checkResponse func(t *testing.T, got domain.Statement, err error)
	}{
		{
			name:        "OK",
			statementID: statement.ID,
			userID:      user.ID,
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(statement.ID), gomock.Eq(user.ID)).
					Times(1).
					Return(statement, nil)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.NoError(t, err)
				require.Equal(t, statement, got)
			},
		},
		{
			name:        "UserNotFound",
			statementID: statement.ID,
			userID:      "1234",
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq("1234")).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrUserNotFound)
				require.Empty(t, got)
			},
		},
		{
			name:        "StatementNotFound",
			statementID: randompkg.UUID(),
			userID:      user.ID,
			buildStubs: func(repo *MockRepo, userRepo *MockUserRepo) {
				userRepo.EXPECT().Get(gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(user, nil)
				repo.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Eq(user.ID)).
					Times(1).
					Return(domain.Statement{}, domain.ErrStatementNotFound)
			},
			checkResponse: func(t *testing.T, got domain.Statement, err error) {
				require.ErrorIs(t, err, domain.ErrStatementNotFound)
				require.Empty(t, got)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			userRepo := NewMockUserRepo(ctrl)
			tc.buildStubs(repo, userRepo)

			service := New(repo, userRepo, configpkg.AmountRoundingReject)

			got, err := service.Get(context.Background(), tc.statementID, tc.userID)
			tc.checkResponse(t, got, err)
		})
	}
}
