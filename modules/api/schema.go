package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/example/storefront/domain/user"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/modules/account"
	"github.com/example/storefront/modules/catalog"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// Decimal carries prices as strings with two fractional digits. Inputs may
// be strings, floats or integers.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "Fixed-point decimal number, serialized as a string.",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case decimal.Decimal:
			return v.StringFixed(2)
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			return v.StringFixed(2)
		}
		return nil
	},
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case string:
			return parseDecimal(v)
		case float64:
			return decimal.NewFromFloat(v)
		case int:
			return decimal.NewFromInt(int64(v))
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return parseDecimal(v.Value)
		case *ast.FloatValue:
			return parseDecimal(v.Value)
		case *ast.IntValue:
			return parseDecimal(v.Value)
		}
		return nil
	},
})

func parseDecimal(s string) any {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return d
}

// UnixTime carries unix seconds as a 64-bit integer. The built-in Int is
// 32-bit and nulls out instants after January 2038.
var UnixTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "UnixTime",
	Description: "Seconds since the unix epoch.",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		}
		return nil
	},
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		if v, ok := valueAST.(*ast.IntValue); ok {
			if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
				return n
			}
		}
		return nil
	},
})

// publicError keeps typed failures and hides everything else.
func publicError(err error) error {
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.Internal {
		return e
	}
	log.Printf("[api] Internal error: %v", err)
	return apperr.New(apperr.Internal, "internal server error")
}

// resolve adapts a resolver method to graphql-go, reading the caller from
// the request context.
func resolve[T any](fn func(p graphql.ResolveParams, caller user.Identity) (T, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v, err := fn(p, IdentityFrom(p.Context))
		if err != nil {
			return nil, publicError(err)
		}
		return v, nil
	}
}

func intArg(p graphql.ResolveParams, name string) int {
	v, _ := p.Args[name].(int)
	return v
}

// idArg reads a non-null Int id argument. Non-positive ids match nothing.
func idArg(p graphql.ResolveParams, name string) uint {
	v := intArg(p, name)
	if v < 0 {
		return 0
	}
	return uint(v)
}

func stringArg(p graphql.ResolveParams, name string) string {
	v, _ := p.Args[name].(string)
	return v
}

// optionalString returns nil when the argument was omitted or null.
func optionalString(p graphql.ResolveParams, name string) *string {
	v, ok := p.Args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

func optionalInt(p graphql.ResolveParams, name string) *int {
	v, ok := p.Args[name].(int)
	if !ok {
		return nil
	}
	return &v
}

func categorySource(src any) (id uint, products []catalog.ProductResponse, expanded bool) {
	switch v := src.(type) {
	case catalog.CategoryResponse:
		return v.ID, v.Products, true
	case *catalog.CategoryResponse:
		return v.ID, v.Products, true
	case *catalog.CategoryRef:
		return v.ID, nil, false
	case catalog.CategoryRef:
		return v.ID, nil, false
	}
	return 0, nil, false
}

func reviewSource(src any) (catalog.ReviewResponse, bool) {
	switch v := src.(type) {
	case catalog.ReviewResponse:
		return v, true
	case *catalog.ReviewResponse:
		return *v, true
	}
	return catalog.ReviewResponse{}, false
}

// NewSchema builds the GraphQL schema over r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	nonNull := graphql.NewNonNull

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "UserType",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: nonNull(graphql.ID)},
			"username":       &graphql.Field{Type: nonNull(graphql.String)},
			"email":          &graphql.Field{Type: nonNull(graphql.String)},
			"firstName":      &graphql.Field{Type: nonNull(graphql.String)},
			"lastName":       &graphql.Field{Type: nonNull(graphql.String)},
			"isStaff":        &graphql.Field{Type: nonNull(graphql.Boolean)},
			"isActive":       &graphql.Field{Type: nonNull(graphql.Boolean)},
			"phone":          &graphql.Field{Type: nonNull(graphql.String)},
			"bio":            &graphql.Field{Type: nonNull(graphql.String)},
			"profilePicture": &graphql.Field{Type: graphql.String},
			"dateJoined":     &graphql.Field{Type: nonNull(graphql.DateTime)},
			"lastLogin":      &graphql.Field{Type: graphql.DateTime},
		},
	})

	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProfileType",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: nonNull(graphql.ID)},
			"user":       &graphql.Field{Type: nonNull(userType)},
			"address":    &graphql.Field{Type: nonNull(graphql.String)},
			"city":       &graphql.Field{Type: nonNull(graphql.String)},
			"country":    &graphql.Field{Type: nonNull(graphql.String)},
			"postalCode": &graphql.Field{Type: nonNull(graphql.String)},
			"createdAt":  &graphql.Field{Type: nonNull(graphql.DateTime)},
			"updatedAt":  &graphql.Field{Type: nonNull(graphql.DateTime)},
		},
	})

	var categoryType, productType, reviewType *graphql.Object

	categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryType",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: nonNull(graphql.ID)},
				"name":        &graphql.Field{Type: nonNull(graphql.String)},
				"description": &graphql.Field{Type: nonNull(graphql.String)},
				"image":       &graphql.Field{Type: nonNull(graphql.String)},
				"createdAt":   &graphql.Field{Type: nonNull(graphql.DateTime)},
				"products": &graphql.Field{
					Type:        graphql.NewList(nonNull(productType)),
					Description: "Active products of the category.",
					Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) ([]catalog.ProductResponse, error) {
						id, products, expanded := categorySource(p.Source)
						if expanded {
							return products, nil
						}
						// Reached through product.category: look the category up.
						categories, err := r.Categories(p.Context, caller)
						if err != nil {
							return nil, err
						}
						for _, c := range categories {
							if c.ID == id {
								return c.Products, nil
							}
						}
						return nil, nil
					}),
				},
			}
		}),
	})

	productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductType",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: nonNull(graphql.ID)},
				"name":        &graphql.Field{Type: nonNull(graphql.String)},
				"description": &graphql.Field{Type: nonNull(graphql.String)},
				"price":       &graphql.Field{Type: nonNull(Decimal)},
				"category":    &graphql.Field{Type: categoryType},
				"image":       &graphql.Field{Type: nonNull(graphql.String)},
				"stock":       &graphql.Field{Type: nonNull(graphql.Int)},
				"isActive":    &graphql.Field{Type: nonNull(graphql.Boolean)},
				"createdAt":   &graphql.Field{Type: nonNull(graphql.DateTime)},
				"updatedAt":   &graphql.Field{Type: nonNull(graphql.DateTime)},
				"reviews":     &graphql.Field{Type: nonNull(graphql.NewList(nonNull(reviewType)))},
			}
		}),
	})

	reviewType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ReviewType",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{Type: nonNull(graphql.ID)},
				"product": &graphql.Field{
					Type: productType,
					Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*catalog.ProductResponse, error) {
						rv, ok := reviewSource(p.Source)
						if !ok {
							return nil, nil
						}
						product, err := r.Product(p.Context, caller, rv.ProductID)
						if apperr.Is(err, apperr.NotFound) {
							return nil, nil
						}
						return product, err
					}),
				},
				"user":      &graphql.Field{Type: nonNull(userType)},
				"rating":    &graphql.Field{Type: nonNull(graphql.Int)},
				"comment":   &graphql.Field{Type: nonNull(graphql.String)},
				"createdAt": &graphql.Field{Type: nonNull(graphql.DateTime)},
			}
		}),
	})

	tokenPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TokenPayload",
		Fields: graphql.Fields{
			"username": &graphql.Field{Type: nonNull(graphql.String)},
			"exp":      &graphql.Field{Type: nonNull(UnixTime)},
			"origIat":  &graphql.Field{Type: nonNull(UnixTime)},
		},
	})

	tokenFields := graphql.Fields{
		"token":            &graphql.Field{Type: nonNull(graphql.String)},
		"payload":          &graphql.Field{Type: nonNull(tokenPayloadType)},
		"refreshExpiresIn": &graphql.Field{Type: nonNull(UnixTime)},
	}
	obtainTokenType := graphql.NewObject(graphql.ObjectConfig{Name: "ObtainJSONWebToken", Fields: tokenFields})
	refreshType := graphql.NewObject(graphql.ObjectConfig{Name: "Refresh", Fields: tokenFields})
	verifyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Verify",
		Fields: graphql.Fields{
			"valid":   &graphql.Field{Type: nonNull(graphql.Boolean)},
			"payload": &graphql.Field{Type: tokenPayloadType},
		},
	})

	payload := func(name, field string, t graphql.Output) *graphql.Object {
		return graphql.NewObject(graphql.ObjectConfig{
			Name:   name,
			Fields: graphql.Fields{field: &graphql.Field{Type: t}},
		})
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: graphql.NewList(userType),
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) ([]user.PublicUser, error) {
					return r.Users(p.Context, caller)
				}),
			},
			"userById": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*user.PublicUser, error) {
					return r.UserByID(p.Context, caller, idArg(p, "id"))
				}),
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*user.PublicUser, error) {
					return r.Me(p.Context, caller)
				}),
			},
			"profiles": &graphql.Field{
				Type: graphql.NewList(profileType),
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) ([]account.ProfileResponse, error) {
					return r.Profiles(p.Context, caller)
				}),
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) ([]catalog.CategoryResponse, error) {
					return r.Categories(p.Context, caller)
				}),
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) ([]catalog.ProductResponse, error) {
					return r.Products(p.Context, caller)
				}),
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*catalog.ProductResponse, error) {
					return r.Product(p.Context, caller, idArg(p, "id"))
				}),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: payload("CreateUser", "user", userType),
				Args: graphql.FieldConfigArgument{
					"username":  &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"email":     &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"password":  &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"firstName": &graphql.ArgumentConfig{Type: graphql.String},
					"lastName":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*UserPayload, error) {
					return r.CreateUser(p.Context, caller, CreateUserInput{
						Username:  stringArg(p, "username"),
						Email:     stringArg(p, "email"),
						Password:  stringArg(p, "password"),
						FirstName: stringArg(p, "firstName"),
						LastName:  stringArg(p, "lastName"),
					})
				}),
			},
			"updateUser": &graphql.Field{
				Type: payload("UpdateUser", "user", userType),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
					"phone":  &graphql.ArgumentConfig{Type: graphql.String},
					"bio":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*UserPayload, error) {
					return r.UpdateUser(p.Context, caller, UpdateUserInput{
						UserID: idArg(p, "userId"),
						Phone:  optionalString(p, "phone"),
						Bio:    optionalString(p, "bio"),
					})
				}),
			},
			"updateProfile": &graphql.Field{
				Type: payload("UpdateProfile", "profile", profileType),
				Args: graphql.FieldConfigArgument{
					"address":    &graphql.ArgumentConfig{Type: graphql.String},
					"city":       &graphql.ArgumentConfig{Type: graphql.String},
					"country":    &graphql.ArgumentConfig{Type: graphql.String},
					"postalCode": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*ProfilePayload, error) {
					return r.UpdateProfile(p.Context, caller, UpdateProfileInput{
						Address:    optionalString(p, "address"),
						City:       optionalString(p, "city"),
						Country:    optionalString(p, "country"),
						PostalCode: optionalString(p, "postalCode"),
					})
				}),
			},
			"createCategory": &graphql.Field{
				Type: payload("CreateCategory", "category", categoryType),
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"image":       &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*CategoryPayload, error) {
					return r.CreateCategory(p.Context, caller, catalog.CreateCategoryRequest{
						Name:        stringArg(p, "name"),
						Description: stringArg(p, "description"),
						Image:       stringArg(p, "image"),
					})
				}),
			},
			"deleteCategory": &graphql.Field{
				Type: payload("DeleteCategory", "ok", graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*DeleteCategoryPayload, error) {
					return r.DeleteCategory(p.Context, caller, idArg(p, "id"))
				}),
			},
			"createProduct": &graphql.Field{
				Type: payload("CreateProduct", "product", productType),
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"price":       &graphql.ArgumentConfig{Type: nonNull(Decimal)},
					"categoryId":  &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
					"stock":       &graphql.ArgumentConfig{Type: graphql.Int},
					"image":       &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*ProductPayload, error) {
					price, _ := p.Args["price"].(decimal.Decimal)
					return r.CreateProduct(p.Context, caller, catalog.CreateProductRequest{
						Name:        stringArg(p, "name"),
						Description: stringArg(p, "description"),
						Price:       price,
						CategoryID:  idArg(p, "categoryId"),
						Stock:       optionalInt(p, "stock"),
						Image:       stringArg(p, "image"),
					})
				}),
			},
			"createReview": &graphql.Field{
				Type: payload("CreateReview", "review", reviewType),
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
					"rating":    &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
					"comment":   &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: resolve(func(p graphql.ResolveParams, caller user.Identity) (*ReviewPayload, error) {
					return r.CreateReview(p.Context, caller, idArg(p, "productId"), intArg(p, "rating"), stringArg(p, "comment"))
				}),
			},
			"tokenAuth": &graphql.Field{
				Type: obtainTokenType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, _ user.Identity) (*account.TokenResponse, error) {
					return r.TokenAuth(p.Context, stringArg(p, "username"), stringArg(p, "password"))
				}),
			},
			"verifyToken": &graphql.Field{
				Type: verifyType,
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, _ user.Identity) (*account.VerifyTokenResponse, error) {
					return r.VerifyToken(p.Context, stringArg(p, "token"))
				}),
			},
			"refreshToken": &graphql.Field{
				Type: refreshType,
				Args: graphql.FieldConfigArgument{
					"token": &graphql.ArgumentConfig{Type: nonNull(graphql.String)},
				},
				Resolve: resolve(func(p graphql.ResolveParams, _ user.Identity) (*account.TokenResponse, error) {
					return r.RefreshToken(p.Context, stringArg(p, "token"))
				}),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
