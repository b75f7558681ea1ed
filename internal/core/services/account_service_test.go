package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portssvc "github.com/SscSPs/blood_bank_app/internal/core/ports/services"
	"github.com/SscSPs/blood_bank_app/internal/core/services"
	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	now      time.Time
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(MockAccountRepository)
	suite.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	suite.service = services.NewAccountService(
		suite.mockRepo,
		services.WithWalkInDonorPassword("walk-in-secret"),
		services.WithAccountClock(func() time.Time { return suite.now }),
	)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_Donor() {
	bt := "ab-"
	req := dto.RegisterAccountRequest{
		Role:      domain.RoleDonor,
		Name:      "  Jane Doe ",
		Email:     "Jane@Example.com",
		Password:  "correct-horse",
		Phone:     "555-0100",
		Address:   "1 Main St",
		BloodType: &bt,
	}
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	acc, err := suite.service.RegisterAccount(suite.ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(acc.AccountID)
	suite.Equal("Jane Doe", acc.Name)
	suite.Equal("jane@example.com", acc.Email)
	suite.Require().NotNil(acc.BloodType)
	suite.Equal(domain.BloodTypeABNegative, *acc.BloodType)
	suite.Equal(acc.AccountID, acc.CreatedBy)
	suite.Equal(suite.now, acc.CreatedAt)
	suite.True(utils.CheckPasswordHash("correct-horse", acc.PasswordHash))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_DonorWithoutBloodType() {
	req := dto.RegisterAccountRequest{
		Role:     domain.RoleDonor,
		Name:     "No Type",
		Email:    "no.type@example.com",
		Password: "correct-horse",
		Phone:    "555-0101",
		Address:  "2 Main St",
	}

	_, err := suite.service.RegisterAccount(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_AdminNotRegistrable() {
	req := dto.RegisterAccountRequest{
		Role:     domain.RoleAdmin,
		Name:     "Root",
		Email:    "root@example.com",
		Password: "correct-horse",
		Phone:    "555-0102",
		Address:  "HQ",
	}

	_, err := suite.service.RegisterAccount(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_DuplicateEmail() {
	req := dto.RegisterAccountRequest{
		Role:     domain.RoleHospital,
		Name:     "City Hospital",
		Email:    "desk@city.example",
		Password: "correct-horse",
		Phone:    "555-0103",
		Address:  "3 Main St",
	}
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.RegisterAccount(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrDuplicateEmail)
}

func (suite *AccountServiceTestSuite) TestRegisterWalkInDonor_DefaultsAndAudit() {
	actor := account("org-1", domain.RoleOrganisation, "intake@redcross.example")
	req := dto.NewDonorRequest{Name: "Walk In", Email: "walk.in@example.com", BloodType: "O+"}

	suite.mockRepo.On("FindAccountByEmail", suite.ctx, "walk.in@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.Role == domain.RoleDonor && a.CreatedBy == "org-1"
	})).Return(nil).Once()

	donor, err := suite.service.RegisterWalkInDonor(suite.ctx, actor, req)

	suite.Require().NoError(err)
	suite.Equal("N/A", donor.Phone)
	suite.Equal("N/A", donor.Address)
	suite.True(donor.Eligible)
	suite.Equal(domain.BloodTypeOPositive, *donor.BloodType)
	suite.True(utils.CheckPasswordHash("walk-in-secret", donor.PasswordHash))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterWalkInDonor_DuplicateEmail() {
	actor := account("org-1", domain.RoleOrganisation, "intake@redcross.example")
	existing := account("donor-1", domain.RoleDonor, "taken@example.com")
	req := dto.NewDonorRequest{Name: "Walk In", Email: "Taken@Example.com", BloodType: "O+"}
	suite.mockRepo.On("FindAccountByEmail", suite.ctx, "Taken@Example.com").Return(existing, nil).Once()

	_, err := suite.service.RegisterWalkInDonor(suite.ctx, actor, req)

	suite.ErrorIs(err, apperrors.ErrDuplicateEmail)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestRegisterWalkInDonor_MissingFields() {
	actor := account("org-1", domain.RoleOrganisation, "intake@redcross.example")

	_, err := suite.service.RegisterWalkInDonor(suite.ctx, actor, dto.NewDonorRequest{Email: "x@example.com"})

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestRegisterAnonymousDonor_UsesActorDomain() {
	actor := account("hosp-1", domain.RoleHospital, "ward@stmary.example")
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	donor, err := suite.service.RegisterAnonymousDonor(suite.ctx, actor, domain.BloodTypeBPositive)

	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(donor.Email, "anonymous+"))
	suite.True(strings.HasSuffix(donor.Email, "@stmary.example"))
	suite.Equal(domain.RoleDonor, donor.Role)
}

func (suite *AccountServiceTestSuite) TestRegisterAnonymousDonor_UniqueUnderFrozenClock() {
	actor := account("hosp-1", domain.RoleHospital, "ward@stmary.example")
	suite.mockRepo.On("SaveAccount", suite.ctx, mock.AnythingOfType("domain.Account")).Return(nil).Twice()

	first, err := suite.service.RegisterAnonymousDonor(suite.ctx, actor, domain.BloodTypeBPositive)
	suite.Require().NoError(err)
	second, err := suite.service.RegisterAnonymousDonor(suite.ctx, actor, domain.BloodTypeBPositive)
	suite.Require().NoError(err)

	suite.NotEqual(first.Email, second.Email)
	suite.Equal(first.CreatedAt, second.CreatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestAuthenticate() {
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	stored := account("org-1", domain.RoleOrganisation, "intake@redcross.example")
	stored.PasswordHash = hash
	suite.mockRepo.On("FindAccountByEmail", suite.ctx, "intake@redcross.example").Return(stored, nil)
	suite.mockRepo.On("FindAccountByEmail", suite.ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	acc, err := suite.service.Authenticate(suite.ctx, "intake@redcross.example", "correct-horse")
	suite.Require().NoError(err)
	suite.Equal("org-1", acc.AccountID)

	_, err = suite.service.Authenticate(suite.ctx, "intake@redcross.example", "wrong")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.Authenticate(suite.ctx, "ghost@example.com", "whatever")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_PropagatesStorageFailure() {
	boom := apperrors.NewAppError(500, "query failed", errors.New("conn reset"))
	suite.mockRepo.On("FindAccountByID", suite.ctx, "org-1").Return(nil, boom).Once()

	_, err := suite.service.GetAccountByID(suite.ctx, "org-1")

	suite.ErrorIs(err, apperrors.ErrStorageFailure)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
