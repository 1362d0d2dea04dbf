package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"recipebox/internal/domain"
	"recipebox/internal/pkg/permission"
	"recipebox/internal/repository"
)

type mockRecipeRepo struct {
	mock.Mock
}

func (m *mockRecipeRepo) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Recipe), args.Error(1)
}

func (m *mockRecipeRepo) List(ctx context.Context, f repository.RecipeFilters) ([]domain.Recipe, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *mockRecipeRepo) Create(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error {
	args := m.Called(ctx, recipe, tagIDs, items)
	return args.Error(0)
}

func (m *mockRecipeRepo) Update(ctx context.Context, recipe *domain.Recipe, tagIDs []int64, items []domain.RecipeIngredient) error {
	args := m.Called(ctx, recipe, tagIDs, items)
	return args.Error(0)
}

func (m *mockRecipeRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRecipeRepo) ShoppingList(ctx context.Context, userID int64) ([]repository.ShoppingItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ShoppingItem), args.Error(1)
}

type mockTagRepo struct {
	mock.Mock
}

func (m *mockTagRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tag), args.Error(1)
}

type mockIngredientRepo struct {
	mock.Mock
}

func (m *mockIngredientRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ingredient), args.Error(1)
}

type mockRelationRepo[T any] struct {
	mock.Mock
}

func (m *mockRelationRepo[T]) Add(ctx context.Context, ownerID, targetID int64) (*T, error) {
	args := m.Called(ctx, ownerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *mockRelationRepo[T]) Remove(ctx context.Context, ownerID, targetID int64) error {
	args := m.Called(ctx, ownerID, targetID)
	return args.Error(0)
}

func (m *mockRelationRepo[T]) Exists(ctx context.Context, ownerID, targetID int64) (bool, error) {
	args := m.Called(ctx, ownerID, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRelationRepo[T]) TargetIDSet(ctx context.Context, ownerID int64) (map[int64]struct{}, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

type serviceMocks struct {
	recipes     *mockRecipeRepo
	tags        *mockTagRepo
	ingredients *mockIngredientRepo
	favorites   *mockRelationRepo[domain.Favorite]
	cart        *mockRelationRepo[domain.ShoppingCartEntry]
	subs        *mockRelationRepo[domain.Subscription]
}

func newTestService() (*Service, *serviceMocks) {
	m := &serviceMocks{
		recipes:     new(mockRecipeRepo),
		tags:        new(mockTagRepo),
		ingredients: new(mockIngredientRepo),
		favorites:   new(mockRelationRepo[domain.Favorite]),
		cart:        new(mockRelationRepo[domain.ShoppingCartEntry]),
		subs:        new(mockRelationRepo[domain.Subscription]),
	}
	svc := NewService(m.recipes, m.tags, m.ingredients, m.favorites, m.cart, m.subs)
	return svc, m
}

func validInput() RecipeInput {
	return RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 15,
		Tags:        []int64{1, 2},
		Ingredients: []IngredientAmountInput{
			{ID: 1, Amount: 200},
			{ID: 2, Amount: 2},
		},
	}
}

func expectResolved(m *serviceMocks) {
	m.tags.On("GetByIDs", mock.Anything, []int64{1, 2}).
		Return([]domain.Tag{{ID: 1}, {ID: 2}}, nil)
	m.ingredients.On("GetByIDs", mock.Anything, []int64{1, 2}).
		Return([]domain.Ingredient{{ID: 1}, {ID: 2}}, nil)
}

func TestService_Create_PersistsTagsAndIngredients(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	stored := &domain.Recipe{ID: 42, AuthorID: 7, Name: "Pancakes"}
	m.recipes.On("Create", mock.Anything, mock.Anything, []int64{1, 2}, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Recipe).ID = 42
			items := args.Get(3).([]domain.RecipeIngredient)
			assert.Len(t, items, 2)
			assert.Equal(t, int64(1), items[0].IngredientID)
			assert.Equal(t, 200, items[0].Amount)
		}).
		Return(nil)
	m.recipes.On("GetByID", mock.Anything, int64(42)).Return(stored, nil)

	recipe, err := svc.Create(context.Background(), 7, validInput(), "recipes/images/p.jpg")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), recipe.ID)
	m.recipes.AssertExpectations(t)
}

func TestService_Create_RequiresImage(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	_, err := svc.Create(context.Background(), 7, validInput(), "")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
	m.recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_RejectsDuplicateTags(t *testing.T) {
	svc, m := newTestService()

	input := validInput()
	input.Tags = []int64{1, 1}

	_, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "tags")
	m.recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_RejectsDuplicateIngredients(t *testing.T) {
	svc, m := newTestService()
	m.tags.On("GetByIDs", mock.Anything, []int64{1, 2}).
		Return([]domain.Tag{{ID: 1}, {ID: 2}}, nil)

	input := validInput()
	input.Ingredients = []IngredientAmountInput{
		{ID: 1, Amount: 100},
		{ID: 1, Amount: 50},
	}

	_, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ingredients")
	m.recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Create_RejectsEmptyIngredients(t *testing.T) {
	svc, m := newTestService()
	m.tags.On("GetByIDs", mock.Anything, []int64{1, 2}).
		Return([]domain.Tag{{ID: 1}, {ID: 2}}, nil)

	input := validInput()
	input.Ingredients = nil

	_, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ingredients")
}

func TestService_Create_RejectsZeroCookingTime(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	input := validInput()
	input.CookingTime = 0

	_, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "cooking_time")
}

func TestService_Create_AcceptsMinimumCookingTime(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	input := validInput()
	input.CookingTime = 1

	stored := &domain.Recipe{ID: 43, CookingTime: 1}
	m.recipes.On("Create", mock.Anything, mock.Anything, []int64{1, 2}, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Recipe).ID = 43
		}).
		Return(nil)
	m.recipes.On("GetByID", mock.Anything, int64(43)).Return(stored, nil)

	recipe, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	assert.NoError(t, err)
	assert.Equal(t, 1, recipe.CookingTime)
}

func TestService_Create_RejectsAmountAboveMax(t *testing.T) {
	svc, m := newTestService()
	m.tags.On("GetByIDs", mock.Anything, []int64{1, 2}).
		Return([]domain.Tag{{ID: 1}, {ID: 2}}, nil)

	input := validInput()
	input.Ingredients = []IngredientAmountInput{{ID: 1, Amount: 32001}}

	_, err := svc.Create(context.Background(), 7, input, "recipes/images/p.jpg")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ingredients")
}

func TestService_Update_KeepsExistingImage(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	existing := &domain.Recipe{ID: 5, AuthorID: 7, Image: "recipes/images/old.jpg"}
	m.recipes.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	m.recipes.On("Update", mock.Anything, mock.Anything, []int64{1, 2}, mock.Anything).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(*domain.Recipe)
			assert.Equal(t, "recipes/images/old.jpg", updated.Image)
		}).
		Return(nil)

	viewer := permission.Viewer{ID: 7}
	_, err := svc.Update(context.Background(), viewer, 5, validInput(), "")

	assert.NoError(t, err)
	m.recipes.AssertExpectations(t)
}

func TestService_Update_ForbiddenForOtherUser(t *testing.T) {
	svc, m := newTestService()

	existing := &domain.Recipe{ID: 5, AuthorID: 7}
	m.recipes.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)

	viewer := permission.Viewer{ID: 8}
	_, err := svc.Update(context.Background(), viewer, 5, validInput(), "")

	assert.ErrorIs(t, err, permission.ErrForbidden)
	m.recipes.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Update_AdminMayEditAnyRecipe(t *testing.T) {
	svc, m := newTestService()
	expectResolved(m)

	existing := &domain.Recipe{ID: 5, AuthorID: 7, Image: "recipes/images/old.jpg"}
	m.recipes.On("GetByID", mock.Anything, int64(5)).Return(existing, nil)
	m.recipes.On("Update", mock.Anything, mock.Anything, []int64{1, 2}, mock.Anything).Return(nil)

	viewer := permission.Viewer{ID: 99, Privileged: true}
	_, err := svc.Update(context.Background(), viewer, 5, validInput(), "")

	assert.NoError(t, err)
}

func TestService_AddFavorite_Twice(t *testing.T) {
	svc, m := newTestService()

	recipe := &domain.Recipe{ID: 3}
	m.recipes.On("GetByID", mock.Anything, int64(3)).Return(recipe, nil)
	m.favorites.On("Add", mock.Anything, int64(1), int64(3)).
		Return(nil, repository.ErrAlreadyExists)

	_, err := svc.AddFavorite(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrAlreadyFavorited)
}

func TestService_RemoveFavorite_NeverFavorited(t *testing.T) {
	svc, m := newTestService()

	recipe := &domain.Recipe{ID: 3}
	m.recipes.On("GetByID", mock.Anything, int64(3)).Return(recipe, nil)
	m.favorites.On("Remove", mock.Anything, int64(1), int64(3)).
		Return(repository.ErrNotFound)

	err := svc.RemoveFavorite(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrNotFavorited)
}

func TestService_AddToCart_Twice(t *testing.T) {
	svc, m := newTestService()

	recipe := &domain.Recipe{ID: 3}
	m.recipes.On("GetByID", mock.Anything, int64(3)).Return(recipe, nil)
	m.cart.On("Add", mock.Anything, int64(1), int64(3)).
		Return(nil, repository.ErrAlreadyExists)

	_, err := svc.AddToCart(context.Background(), 1, 3)

	assert.ErrorIs(t, err, ErrAlreadyInCart)
}

func TestService_CartRecipes_UsesCartFilter(t *testing.T) {
	svc, m := newTestService()

	m.recipes.On("List", mock.Anything, repository.RecipeFilters{InCartOf: 1}).
		Return([]domain.Recipe{{ID: 3}, {ID: 4}}, int64(2), nil)

	recipes, err := svc.CartRecipes(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, recipes, 2)
	m.recipes.AssertExpectations(t)
}

func TestService_ShoppingList_EmptyCart(t *testing.T) {
	svc, m := newTestService()

	m.recipes.On("ShoppingList", mock.Anything, int64(1)).
		Return([]repository.ShoppingItem{}, nil)

	_, err := svc.ShoppingList(context.Background(), 1)

	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestService_Sets_AnonymousViewer(t *testing.T) {
	svc, m := newTestService()

	sets, err := svc.Sets(context.Background(), 0)

	assert.NoError(t, err)
	assert.Empty(t, sets.Favorited)
	assert.Empty(t, sets.InCart)
	m.favorites.AssertNotCalled(t, "TargetIDSet", mock.Anything, mock.Anything)
}
