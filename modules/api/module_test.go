package api

import (
	"context"
	"testing"

	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/catalog"
	"github.com/go-monolith/mono"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// ModuleSuite drives the GraphQL endpoint of an APIModule that reaches the
// account and catalog modules over mono request-reply, as main does.
type ModuleSuite struct {
	suite.Suite
	app      mono.MonoApplication
	accounts *account.AccountModule
	catalog  *catalog.CatalogModule
	env      *testEnv
}

func (s *ModuleSuite) SetupTest() {
	db, err := database.Open(config.Database{Driver: "sqlite", Path: ":memory:"})
	s.Require().NoError(err)

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
	)
	s.Require().NoError(err)

	s.accounts = account.NewModule(db, account.DefaultJWTConfig(), bcrypt.MinCost)
	s.catalog = catalog.NewModule(db, cache.Nop{})
	apiModule := NewModule(config.Config{HTTPAddr: "127.0.0.1:0", CORSAllowedOrigins: "*"}, nil)

	s.Require().NoError(app.Register(s.accounts))
	s.Require().NoError(app.Register(s.catalog))
	s.Require().NoError(app.Register(apiModule))
	s.Require().NoError(app.Start(context.Background()))
	s.Require().NotNil(apiModule.app)

	s.app = app
	s.env = &testEnv{app: apiModule.app, db: db}
	s.T().Cleanup(func() { database.Close(db) })
}

func (s *ModuleSuite) TearDownTest() {
	if s.app != nil {
		_ = s.app.Stop(context.Background())
	}
}

func TestModuleSuite(t *testing.T) {
	suite.Run(t, new(ModuleSuite))
}

func (s *ModuleSuite) TestAccount_CreateAndFetchUser() {
	t := s.T()
	id, _ := s.env.signUp(t, "alice", false)

	res := s.env.exec(t, "", `query($id: Int!) { userById(id: $id) { username email } }`,
		map[string]any{"id": atoi(t, id)})
	s.Require().Empty(res.Errors)
	s.Equal("alice", field(t, res.Data, "userById", "username"))
	s.Equal("alice@example.com", field(t, res.Data, "userById", "email"))
}

func (s *ModuleSuite) TestAccount_TypedFailuresKeepTheirMessage() {
	t := s.T()
	s.env.signUp(t, "alice", false)

	res := s.env.exec(t, "", `{ userById(id: 42) { id } }`, nil)
	s.Require().Len(res.Errors, 1)
	s.Equal("NOT_FOUND", res.code())
	s.Equal("user 42 not found", res.Errors[0].Message)

	res = s.env.exec(t, "", `mutation { tokenAuth(username: "alice", password: "wrong-password") { token } }`, nil)
	s.Require().Len(res.Errors, 1)
	s.Equal("INVALID_CREDENTIALS", res.code())
	s.Equal("Please enter valid credentials", res.Errors[0].Message)

	res = s.env.exec(t, "", `mutation {
		createUser(username: "alice", email: "other@example.com", password: "password123") { user { id } }
	}`, nil)
	s.Equal("DUPLICATE_USERNAME", res.code())
	s.Equal("A user with that username already exists.", res.Errors[0].Message)
}

func (s *ModuleSuite) TestAccount_IdentityResolvedOverRequestReply() {
	t := s.T()
	ctx := context.Background()

	created, err := s.accounts.Service().CreateUser(ctx, account.CreateUserRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	tok, err := s.accounts.Service().ObtainToken(ctx, "bob", "password123")
	s.Require().NoError(err)

	res := s.env.exec(t, tok.Token, `{ me { id username } }`, nil)
	s.Require().Empty(res.Errors)
	s.Equal("bob", field(t, res.Data, "me", "username"))
	s.Equal(created.ID, uint(atoi(t, field(t, res.Data, "me", "id").(string))))
}

func (s *ModuleSuite) TestCatalog_ListAndCreate() {
	t := s.T()
	ctx := context.Background()

	_, err := s.catalog.Service().CreateCategory(ctx, catalog.CreateCategoryRequest{Name: "Books"})
	s.Require().NoError(err)

	_, staffToken := s.env.signUp(t, "staff", true)
	categoryID := createCategory(t, s.env, staffToken, "Gadgets")
	createProduct(t, s.env, staffToken, categoryID, "Widget")

	res := s.env.exec(t, "", `{ categories { name } products { name price category { name } } }`, nil)
	s.Require().Empty(res.Errors)
	s.Len(field(t, res.Data, "categories"), 2)

	products := field(t, res.Data, "products").([]any)
	s.Require().Len(products, 1)
	s.Equal("Widget", field(t, products[0], "name"))
	s.Equal("9.99", field(t, products[0], "price"))
	s.Equal("Gadgets", field(t, products[0], "category", "name"))
}

func (s *ModuleSuite) TestCatalog_TypedFailuresKeepTheirMessage() {
	t := s.T()
	_, staffToken := s.env.signUp(t, "staff", true)
	_, aliceToken := s.env.signUp(t, "alice", false)

	res := s.env.exec(t, staffToken, `mutation { deleteCategory(id: 999) { ok } }`, nil)
	s.Require().Len(res.Errors, 1)
	s.Equal("NOT_FOUND", res.code())
	s.Equal("category 999 not found", res.Errors[0].Message)

	res = s.env.exec(t, aliceToken, `mutation { createReview(productId: 999, rating: 5) { review { id } } }`, nil)
	s.Require().Len(res.Errors, 1)
	s.Equal("NOT_FOUND", res.code())
	s.Equal("product 999 not found", res.Errors[0].Message)

	categoryID := createCategory(t, s.env, staffToken, "Gadgets")
	productID := createProduct(t, s.env, staffToken, categoryID, "Widget")
	review := `mutation($p: Int!) { createReview(productId: $p, rating: 4) { review { id } } }`
	vars := map[string]any{"p": atoi(t, productID)}

	res = s.env.exec(t, aliceToken, review, vars)
	s.Require().Empty(res.Errors)
	res = s.env.exec(t, aliceToken, review, vars)
	s.Equal("DUPLICATE_REVIEW", res.code())
	s.Equal("you have already reviewed this product", res.Errors[0].Message)
}

func (s *ModuleSuite) TestHealth() {
	health := s.app.Health(context.Background())
	s.True(health.Healthy)
}
